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

package constants

import "time"

// viper keys
const (
	ConfigFolder = "CONFIG_FOLDER"
	ConfigPath   = "CONFIG_PATH"
	LogLevel     = "LOG_LEVEL"
	NoLogFile    = "NO_LOG_FILE"
	EnvPrefix    = "AEROQUERY"
)

const (
	AppName        = "aeroquery"
	LogFileName    = "aeroquery.log"
	DefaultLogSize = 100 // megabytes
)

// store drivers
const (
	AerospikeDriver = "aerospike"
	MemoryDriver    = "memory"
)

const (
	DefaultAerospikePort = 3000
	DefaultTimeout       = 30 * time.Second
	// bin returned by the server for every aggregated row
	AggregateResultBin = "SUCCESS"
	SindexListCommand  = "sindex-list:ns="
)

// Record metadata fields addressable by qualifiers. The leading '@' keeps
// them out of the bin namespace.
const (
	GenerationField = "@generation"
	ExpiryField     = "@expiry"
	KeyField        = "@key"
	DigestField     = "@digest"
	// record digests are RIPEMD-160 on the server
	DigestSize = 20
)
