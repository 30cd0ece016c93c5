/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/planner"
	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils"
	"github.com/datazip-inc/aeroquery/utils/logger"
	"github.com/datazip-inc/aeroquery/utils/typeutils"
)

func queryFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.namespace, "namespace", "n", "", "(Required) Namespace to query")
	cmd.Flags().StringVarP(&opts.set, "set", "s", "", "(Optional) Set to query, all sets of the namespace when empty")
	cmd.Flags().StringSliceVarP(&opts.bins, "bins", "b", nil, "(Optional) Bins to return, all when empty")
	cmd.Flags().StringVarP(&opts.where, "where", "w", "", "(Optional) Qualifiers, e.g. `age between 25 and 29 and color = \"blue\"`")
	cmd.Flags().StringVarP(&opts.policy, "policy", "p", "first-eligible", "(Optional) Pushdown policy: first-eligible, none or hint:<bin>")
	cmd.Flags().BoolVarP(&opts.recheck, "recheck", "", false, "(Optional) Re-evaluate every qualifier on returned rows")
	cmd.Flags().BoolVarP(&opts.strict, "strict", "", false, "(Optional) Fail when a qualifier can be checked neither by an index nor on the server")
}

func parsePolicy(name string) (planner.PushdownPolicy, error) {
	switch {
	case name == "" || name == (planner.FirstEligible{}).Name():
		return planner.FirstEligible{}, nil
	case name == (planner.NoPushdown{}).Name():
		return planner.NoPushdown{}, nil
	case strings.HasPrefix(name, "hint:") && len(name) > len("hint:"):
		return planner.HintPolicy{Field: strings.TrimPrefix(name, "hint:")}, nil
	default:
		return nil, fmt.Errorf("unknown pushdown policy %q", name)
	}
}

// prepare parses the query flags into a planner, statement and predicates.
func prepare(client abstract.Client, opts *options) (*planner.Planner, *types.Statement, []types.Predicate, error) {
	if opts.namespace == "" {
		return nil, nil, nil, fmt.Errorf("--namespace not passed")
	}
	policy, err := parsePolicy(opts.policy)
	if err != nil {
		return nil, nil, nil, err
	}
	preds, err := types.ParseQualifiers(opts.where)
	if err != nil {
		return nil, nil, nil, err
	}

	plannerOpts := []planner.Option{planner.WithPolicy(policy)}
	if opts.strict {
		plannerOpts = append(plannerOpts, planner.WithStrictFallback())
	}
	if opts.recheck {
		plannerOpts = append(plannerOpts, planner.WithInProcessRecheck())
	}
	return planner.New(client, plannerOpts...), types.NewStatement(opts.namespace, opts.set, opts.bins...), preds, nil
}

func selectCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "print the records matching the qualifiers as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := openDriver(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer driver.Close()

			count, err := runSelect(cmd.Context(), driver, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger.Infof("selected %d records", count)
			return nil
		},
	}
	queryFlags(cmd, opts)
	cmd.Flags().BoolVarP(&opts.flatten, "flatten", "", false, "(Optional) Print collection bins as JSON text")
	return cmd
}

func runSelect(ctx context.Context, client abstract.Client, opts *options, out io.Writer) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	queryPlanner, stmt, preds, err := prepare(client, opts)
	if err != nil {
		return 0, err
	}
	it, err := queryPlanner.Select(ctx, stmt, preds...)
	if err != nil {
		return 0, err
	}

	var flattener typeutils.Flattener
	if opts.flatten {
		flattener = typeutils.NewFlattener()
	}

	encoder := json.NewEncoder(out)
	count := 0
	for it.Next() {
		message, err := recordMessage(it.Record(), flattener)
		if err == nil {
			err = encoder.Encode(message)
		}
		if err != nil {
			_ = it.Close()
			return count, err
		}
		count++
	}
	return count, utils.ErrExecSequential(it.Err, utils.ErrExecFormat("failed to close query: %w", it.Close))
}

func recordMessage(rec *types.KeyRecord, flattener typeutils.Flattener) (types.Message, error) {
	row := &types.RecordRow{
		Generation: rec.Generation,
		Expiration: rec.Expiration,
		Bins:       utils.NormalizeJSON(rec.Bins).(map[string]any),
	}
	if flattener != nil {
		flat, err := flattener.Flatten(rec.Bins)
		if err != nil {
			return types.Message{}, err
		}
		row.Bins = flat
	}
	if rec.Key != nil {
		row.Namespace = rec.Key.Namespace
		row.Set = rec.Key.SetName
		row.Key = rec.Key.UserKey
		row.Digest = rec.Key.Digest
	}
	return types.Message{Type: types.RecordMessage, Record: row}, nil
}
