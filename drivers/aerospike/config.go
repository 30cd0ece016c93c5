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

package aerospike

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	as "github.com/aerospike/aerospike-client-go/v7"

	"github.com/datazip-inc/aeroquery/constants"
	"github.com/datazip-inc/aeroquery/utils"
)

type Config struct {
	// Hosts
	//
	// @jsonSchema(
	//   title="Hosts",
	//   description="Seed nodes as host or host:port",
	//   type="array",
	//   default=["localhost:3000"],
	//   order=1
	// )
	Hosts []string `json:"hosts" validate:"required,min=1,dive,hostport"`

	// Port
	//
	// @jsonSchema(
	//   title="Default Port",
	//   description="Port used for hosts listed without one",
	//   type="integer",
	//   default=3000,
	//   order=2
	// )
	Port int `json:"port" validate:"gte=0,lte=65535"`

	// Username
	//
	// @jsonSchema(
	//   title="Username",
	//   description="User for clusters with security enabled",
	//   type="string",
	//   order=3
	// )
	Username string `json:"username"`

	// Password
	//
	// @jsonSchema(
	//   title="Password",
	//   description="Password of the user",
	//   type="string",
	//   format="password",
	//   order=4
	// )
	Password string `json:"password" validate:"required_with=Username"`

	// Timeout
	//
	// @jsonSchema(
	//   title="Timeout",
	//   description="Connection and query timeout in seconds",
	//   type="integer",
	//   default=30,
	//   order=5
	// )
	Timeout int `json:"timeout" validate:"gte=0"`

	// RetryCount
	//
	// @jsonSchema(
	//   title="Connection Retries",
	//   description="Attempts to connect before giving up",
	//   type="integer",
	//   default=3,
	//   order=6
	// )
	RetryCount int `json:"retry_count" validate:"gte=0"`

	// RegisterUDF
	//
	// @jsonSchema(
	//   title="Register UDF",
	//   description="Install the qualifiers Lua module on setup",
	//   type="boolean",
	//   default=true,
	//   order=7
	// )
	RegisterUDF bool `json:"register_udf"`
}

func (c *Config) Validate() error {
	if c.Port == 0 {
		c.Port = constants.DefaultAerospikePort
	}
	if c.RetryCount == 0 {
		c.RetryCount = 3
	}
	return utils.Validate(c)
}

func (c *Config) timeout() time.Duration {
	return utils.Ternary(c.Timeout > 0, time.Duration(c.Timeout)*time.Second, constants.DefaultTimeout).(time.Duration)
}

// seeds resolves Hosts into client hosts, applying Port where missing.
func (c *Config) seeds() ([]*as.Host, error) {
	hosts := make([]*as.Host, 0, len(c.Hosts))
	for _, entry := range c.Hosts {
		name, port, found := strings.Cut(strings.TrimSpace(entry), ":")
		number := c.Port
		if found {
			parsed, err := strconv.Atoi(port)
			if err != nil {
				return nil, fmt.Errorf("invalid port in host %q: %s", entry, err)
			}
			number = parsed
		}
		hosts = append(hosts, as.NewHost(name, number))
	}
	return hosts, nil
}

func (c *Config) clientPolicy() *as.ClientPolicy {
	policy := as.NewClientPolicy()
	policy.Timeout = c.timeout()
	if c.Username != "" {
		policy.User = c.Username
		policy.Password = c.Password
	}
	return policy
}
