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

package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrValueType = errors.New("value has a different type")

type ParticleType int

const (
	ParticleUnknown ParticleType = iota
	ParticleInteger
	ParticleFloat
	ParticleString
	ParticleGeoJSON
)

func (p ParticleType) String() string {
	switch p {
	case ParticleInteger:
		return "integer"
	case ParticleFloat:
		return "float"
	case ParticleString:
		return "text"
	case ParticleGeoJSON:
		return "geojson"
	default:
		return "unknown"
	}
}

// Value is a predicate operand. The zero Value carries no particle and is
// rejected by predicate construction.
type Value struct {
	particle ParticleType
	i        int64
	f        float64
	s        string
}

func IntegerValue(v int64) Value { return Value{particle: ParticleInteger, i: v} }

func FloatValue(v float64) Value { return Value{particle: ParticleFloat, f: v} }

func TextValue(v string) Value { return Value{particle: ParticleString, s: v} }

func GeoJSONValue(v string) Value { return Value{particle: ParticleGeoJSON, s: v} }

// ValueOf maps a native Go value onto a Value.
func ValueOf(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case int:
		return IntegerValue(int64(val)), nil
	case int8:
		return IntegerValue(int64(val)), nil
	case int16:
		return IntegerValue(int64(val)), nil
	case int32:
		return IntegerValue(int64(val)), nil
	case int64:
		return IntegerValue(val), nil
	case uint8:
		return IntegerValue(int64(val)), nil
	case uint16:
		return IntegerValue(int64(val)), nil
	case uint32:
		return IntegerValue(int64(val)), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrValueType, val)
		}
		return IntegerValue(int64(val)), nil
	case uint64:
		if val > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrValueType, val)
		}
		return IntegerValue(int64(val)), nil
	case float32:
		return FloatValue(float64(val)), nil
	case float64:
		return FloatValue(val), nil
	case string:
		return TextValue(val), nil
	case GeoJSON:
		return GeoJSONValue(string(val)), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported operand type %T", ErrValueType, v)
	}
}

func (v Value) Type() ParticleType { return v.particle }

func (v Value) IsValid() bool { return v.particle != ParticleUnknown }

func (v Value) IsNumeric() bool {
	return v.particle == ParticleInteger || v.particle == ParticleFloat
}

func (v Value) AsInteger() (int64, error) {
	if v.particle != ParticleInteger {
		return 0, fmt.Errorf("%w: expected integer, got %s", ErrValueType, v.particle)
	}
	return v.i, nil
}

func (v Value) AsFloat() (float64, error) {
	if v.particle != ParticleFloat {
		return 0, fmt.Errorf("%w: expected float, got %s", ErrValueType, v.particle)
	}
	return v.f, nil
}

// AsNumber widens Integer and Float operands to float64.
func (v Value) AsNumber() (float64, error) {
	switch v.particle {
	case ParticleInteger:
		return float64(v.i), nil
	case ParticleFloat:
		return v.f, nil
	default:
		return 0, fmt.Errorf("%w: expected number, got %s", ErrValueType, v.particle)
	}
}

// AsText returns the textual payload of Text and GeoJSON values.
func (v Value) AsText() (string, error) {
	if v.particle != ParticleString && v.particle != ParticleGeoJSON {
		return "", fmt.Errorf("%w: expected text, got %s", ErrValueType, v.particle)
	}
	return v.s, nil
}

// Interface returns the value in the shape stored in record bins.
func (v Value) Interface() any {
	switch v.particle {
	case ParticleInteger:
		return v.i
	case ParticleFloat:
		return v.f
	case ParticleString:
		return v.s
	case ParticleGeoJSON:
		return GeoJSON(v.s)
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.particle {
	case ParticleInteger:
		return strconv.FormatInt(v.i, 10)
	case ParticleFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ParticleString, ParticleGeoJSON:
		return v.s
	default:
		return "<nil>"
	}
}

// GeoJSON marks a bin value as a geospatial document rather than plain text.
type GeoJSON string
