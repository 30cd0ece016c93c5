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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/aeroquery/constants"
	"github.com/datazip-inc/aeroquery/utils"
	"github.com/datazip-inc/aeroquery/utils/logger"
)

// options holds the flags shared by the commands of one root command.
type options struct {
	configPath string
	logLevel   string
	noLogFile  bool

	namespace string
	set       string
	bins      []string
	where     string
	policy    string
	recheck   bool
	strict    bool
	format    string
	flatten   bool
}

// CreateRootCommand builds the aeroquery command tree. Each call returns
// independent commands and flags.
func CreateRootCommand() *cobra.Command {
	opts := &options{}
	commands := []*cobra.Command{
		selectCommand(opts),
		explainCommand(opts),
		indexesCommand(opts),
		checkCommand(opts),
	}

	root := &cobra.Command{
		Use:   constants.AppName,
		Short: "query a store with qualifiers",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initEnv(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
				return fmt.Errorf("'%s' is an invalid command. Use 'aeroquery --help' to display usage guide", args[0])
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "(Required) Store config file, JSON or YAML")
	root.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "", "", "(Optional) Log level, defaults to info")
	root.PersistentFlags().BoolVarP(&opts.noLogFile, "no-log-file", "", false, "(Optional) Skip writing logs next to the config")
	// Disable Cobra CLI's built-in usage and error handling
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.AddCommand(commands...)
	return root
}

// Execute runs the command line with os.Args.
func Execute() error {
	return CreateRootCommand().Execute()
}

// initEnv sets viper keys from flags and environment, then the logger.
// Environment variables use the AEROQUERY_ prefix.
func initEnv(opts *options) error {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(constants.ConfigFolder, os.TempDir())
	if opts.configPath != "" {
		viper.Set(constants.ConfigFolder, filepath.Dir(opts.configPath))
		viper.Set(constants.ConfigPath, opts.configPath)
	}
	if opts.logLevel != "" {
		viper.Set(constants.LogLevel, opts.logLevel)
	}
	if opts.noLogFile {
		viper.Set(constants.NoLogFile, true)
	}

	// logger uses CONFIG_FOLDER
	logger.Init()
	return nil
}
