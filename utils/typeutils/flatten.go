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

package typeutils

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/datazip-inc/aeroquery/types"
)

// Flattener turns record bins into a single level row: scalars stay as they
// are and collections become their JSON text.
type Flattener interface {
	Flatten(bins map[string]any) (map[string]any, error)
}

type FlattenerImpl struct {
	omitNilValues bool
}

func NewFlattener() Flattener {
	return &FlattenerImpl{
		omitNilValues: true,
	}
}

func (f *FlattenerImpl) Flatten(bins map[string]any) (map[string]any, error) {
	destination := make(map[string]any, len(bins))

	for key, value := range bins {
		if err := f.flatten(key, value, destination); err != nil {
			return nil, err
		}
	}

	return destination, nil
}

func (f *FlattenerImpl) flatten(key string, value any, destination map[string]any) error {
	if value == nil {
		if !f.omitNilValues {
			destination[key] = nil
		}
		return nil
	}

	switch v := value.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, string:
		destination[key] = v
	case types.GeoJSON:
		destination[key] = string(v)
	case []byte:
		destination[key] = string(v)
	default:
		b, err := json.Marshal(jsonable(v))
		if err != nil {
			return err
		}
		destination[key] = string(b)
	}

	return nil
}

// jsonable rewrites map[any]any into map[string]any, which json cannot
// encode otherwise.
func jsonable(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[fmt.Sprint(key)] = jsonable(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[key] = jsonable(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for idx, item := range val {
			out[idx] = jsonable(item)
		}
		return out
	case types.GeoJSON:
		return json.RawMessage(val)
	default:
		return v
	}
}
