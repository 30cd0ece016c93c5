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

package safego

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/datazip-inc/aeroquery/utils/logger"
)

var startTime time.Time

// Recovery logs a panic with its stack; with exit it terminates the process.
// Use as `defer safego.Recovery(true)` in main.
func Recovery(exit bool) {
	err := recover()
	if err != nil {
		logger.Error(err)
		// capture stacks trace
		for _, str := range strings.Split(string(debug.Stack()), "\n") {
			logger.Error(strings.ReplaceAll(str, "\t", ""))
		}
	}
	if exit && err != nil {
		logger.Infof("Time of execution %v", time.Since(startTime).String())
		os.Exit(1)
	}
}

// RecoverError turns a panic in the calling goroutine into an error. It must
// be deferred directly: `defer safego.RecoverError(&err)`.
func RecoverError(err *error) {
	if r := recover(); r != nil {
		logger.Errorf("recovered from panic: %v", r)
		logger.Debug(string(debug.Stack()))
		*err = fmt.Errorf("panic: %v", r)
	}
}

func init() {
	startTime = time.Now()
}
