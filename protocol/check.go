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
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils/logger"
)

// checkCommand connects with the given config and reports the outcome as a
// connection status message.
func checkCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "check the store config and connection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := func() error {
				driver, err := openDriver(cmd.Context(), opts.configPath)
				if err != nil {
					return err
				}
				return driver.Close()
			}()

			message := types.Message{
				Type: types.ConnectionStatusMessage,
				ConnectionStatus: &types.StatusRow{
					Status: types.ConnectionSucceed,
				},
			}
			if err != nil {
				logger.Errorf("connection check failed: %s", err)
				message.ConnectionStatus.Message = err.Error()
				message.ConnectionStatus.Status = types.ConnectionFailed
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(message)
		},
	}
}
