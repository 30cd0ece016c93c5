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

package aeroquery

import (
	"os"

	"github.com/datazip-inc/aeroquery/protocol"
	"github.com/datazip-inc/aeroquery/utils/logger"
	"github.com/datazip-inc/aeroquery/utils/safego"
)

// Run executes the command line and exits the process.
func Run() {
	defer safego.Recovery(true)

	// Execute the root command
	if err := protocol.Execute(); err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
