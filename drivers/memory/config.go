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

package memory

import (
	"github.com/datazip-inc/aeroquery/utils"
)

type Config struct {
	// Fixture
	//
	// @jsonSchema(
	//   title="Fixture",
	//   description="JSON or YAML file with namespaces, sets, records and indexes to preload",
	//   type="string",
	//   order=1
	// )
	Fixture string `json:"fixture"`

	// Buffer
	//
	// @jsonSchema(
	//   title="Result Buffer",
	//   description="Records buffered between the scanner and the consumer",
	//   type="integer",
	//   default=64,
	//   order=2
	// )
	Buffer int `json:"buffer" validate:"gte=0"`
}

func (c *Config) Validate() error {
	return utils.Validate(c)
}
