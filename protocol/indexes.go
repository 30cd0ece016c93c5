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
	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils"
)

func indexesCommand(opts *options) *cobra.Command {
	var namespaces []string
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "list the secondary indexes of one or more namespaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := openDriver(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer driver.Close()

			return runIndexes(cmd.Context(), driver, namespaces, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVarP(&namespaces, "namespace", "n", nil, "(Required) Namespaces to list")
	return cmd
}

// runIndexes lists every namespace concurrently and prints them in the order
// given.
func runIndexes(ctx context.Context, lister abstract.IndexLister, namespaces []string, out io.Writer) error {
	if len(namespaces) == 0 {
		return fmt.Errorf("--namespace not passed")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	listed := make([][]types.Index, len(namespaces))
	listers := make([]func(ctx context.Context) error, len(namespaces))
	for idx, namespace := range namespaces {
		listers[idx] = func(ctx context.Context) error {
			indexes, err := lister.Indexes(ctx, namespace)
			if err != nil {
				return fmt.Errorf("failed to list indexes of %s: %w", namespace, err)
			}
			listed[idx] = indexes
			return nil
		}
	}
	if err := utils.ErrExec(ctx, listers...); err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	for _, indexes := range listed {
		for idx := range indexes {
			if err := encoder.Encode(types.Message{Type: types.IndexMessage, Index: &indexes[idx]}); err != nil {
				return err
			}
		}
	}
	return nil
}
