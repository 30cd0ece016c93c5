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

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/planner"
	"github.com/datazip-inc/aeroquery/types"
)

func explainCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "show how the qualifiers would be executed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := openDriver(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer driver.Close()

			return runExplain(cmd.Context(), driver, opts, cmd.OutOrStdout())
		},
	}
	queryFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "(Optional) Output format: text or json")
	return cmd
}

func runExplain(ctx context.Context, client abstract.Client, opts *options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	queryPlanner, stmt, preds, err := prepare(client, opts)
	if err != nil {
		return err
	}
	plan, err := queryPlanner.Plan(ctx, stmt, preds...)
	if err != nil {
		return err
	}

	switch opts.format {
	case "", "text":
		_, err = io.WriteString(out, planner.Explain(plan))
		return err
	case "json":
		return json.NewEncoder(out).Encode(types.Message{Type: types.PlanMessage, Plan: planner.Describe(plan)})
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}
