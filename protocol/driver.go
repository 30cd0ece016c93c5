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
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/aeroquery/constants"
	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/drivers/aerospike"
	"github.com/datazip-inc/aeroquery/drivers/memory"
	"github.com/datazip-inc/aeroquery/utils"
	"github.com/datazip-inc/aeroquery/utils/logger"
)

// StoreConfig is the file passed with --config: a driver type and that
// driver's own config.
type StoreConfig struct {
	Type   string          `json:"type" validate:"required,oneof=aerospike memory"`
	Config json.RawMessage `json:"config" validate:"required"`
}

func newDriver(driverType string) (abstract.Driver, error) {
	switch driverType {
	case constants.AerospikeDriver:
		return aerospike.New(), nil
	case constants.MemoryDriver:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown driver type %q", driverType)
	}
}

// loadDriver reads the config file into a new driver without connecting.
func loadDriver(configPath string) (abstract.Driver, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config not passed")
	}
	storeConfig := &StoreConfig{}
	if err := utils.UnmarshalFile(configPath, storeConfig, true); err != nil {
		return nil, err
	}

	driver, err := newDriver(storeConfig.Type)
	if err != nil {
		return nil, err
	}
	config := driver.GetConfigRef()
	if err := utils.Unmarshal(storeConfig.Config, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s config: %s", storeConfig.Type, err)
	}
	// fixture paths are relative to the config file
	if mem, ok := config.(*memory.Config); ok && mem.Fixture != "" && !filepath.IsAbs(mem.Fixture) {
		mem.Fixture = filepath.Join(filepath.Dir(configPath), mem.Fixture)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate %s config: %s", storeConfig.Type, err)
	}
	return driver, nil
}

// openDriver loads and sets up the driver. Callers close it.
func openDriver(ctx context.Context, configPath string) (abstract.Driver, error) {
	driver, err := loadDriver(configPath)
	if err != nil {
		return nil, err
	}
	if err := driver.Setup(ctx); err != nil {
		_ = driver.Close()
		return nil, err
	}
	logger.Debugf("%s driver ready", driver.Type())
	return driver, nil
}
