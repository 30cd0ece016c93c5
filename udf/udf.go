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

// Package udf ships the Lua module that evaluates qualifier expressions on
// the server.
package udf

import (
	_ "embed"
)

const (
	ModuleName     = "qualifiers"
	ModuleFile     = "qualifiers.lua"
	SelectFunction = "select_records"
	// FilterFunction compiles an expression into a row predicate.
	FilterFunction = "compile_filter"
)

//go:embed qualifiers.lua
var Module []byte
