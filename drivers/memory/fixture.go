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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"sigs.k8s.io/yaml"

	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils"
)

// geoMarker wraps a GeoJSON document in fixtures: {"$geo": {...}}.
const geoMarker = "$geo"

type Fixture struct {
	Namespace string                     `json:"namespace" validate:"required"`
	Indexes   []types.Index              `json:"indexes"`
	Sets      map[string][]FixtureRecord `json:"sets"`
}

type FixtureRecord struct {
	Key  any            `json:"key" validate:"required"`
	TTL  uint32         `json:"ttl"`
	Bins map[string]any `json:"bins"`
}

// LoadFixtureFile reads a JSON or YAML fixture.
func (s *Store) LoadFixtureFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture[%s]: %s", path, err)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert fixture[%s]: %s", path, err)
		}
	}
	return s.LoadFixture(data)
}

// LoadFixture loads a JSON fixture. Whole numbers become integers, other
// numbers floats, objects maps and {"$geo": ...} objects GeoJSON.
func (s *Store) LoadFixture(data []byte) error {
	var fixture Fixture
	if err := utils.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture: %s", err)
	}
	if err := utils.Validate(&fixture); err != nil {
		return fmt.Errorf("invalid fixture: %s", err)
	}

	for _, index := range fixture.Indexes {
		if index.Namespace == "" {
			index.Namespace = fixture.Namespace
		}
		if err := s.CreateIndex(index); err != nil {
			return err
		}
	}

	for set, records := range fixture.Sets {
		for _, record := range records {
			key, err := fromJSON(record.Key)
			if err != nil {
				return fmt.Errorf("invalid key in set %s: %s", set, err)
			}
			bins := make(map[string]any, len(record.Bins))
			for name, raw := range record.Bins {
				value, err := fromJSON(raw)
				if err != nil {
					return fmt.Errorf("invalid bin %s in set %s: %s", name, set, err)
				}
				bins[name] = value
			}
			if _, err := s.Put(fixture.Namespace, set, key, bins, record.TTL); err != nil {
				return err
			}
		}
	}
	return nil
}

func fromJSON(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil && !strings.ContainsAny(val.String(), ".eE") {
			return i, nil
		}
		return val.Float64()
	case []any:
		out := make([]any, len(val))
		for idx, item := range val {
			converted, err := fromJSON(item)
			if err != nil {
				return nil, err
			}
			out[idx] = converted
		}
		return out, nil
	case map[string]any:
		if geo, ok := val[geoMarker]; ok && len(val) == 1 {
			doc, err := json.Marshal(geo)
			if err != nil {
				return nil, err
			}
			return types.GeoJSON(doc), nil
		}
		out := make(map[any]any, len(val))
		for key, item := range val {
			converted, err := fromJSON(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	default:
		return val, nil
	}
}
