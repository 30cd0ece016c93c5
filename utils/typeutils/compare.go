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
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/datazip-inc/aeroquery/types"
)

// Bin values follow the scripting runtime's value model: every integer and
// float is a number, strings are strings, and nothing else is ordered.

// ToNumber widens any integer or float kind to float64.
func ToNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case int, int8, int16, int32:
		return float64(reflect.ValueOf(v).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Uint()), true
	case float32:
		return float64(val), true
	default:
		return 0, false
	}
}

// Compare orders a against b. It returns ok=false when the pair has no
// order: mixed kinds, non-scalar values or NaN.
// return 0 for equal, -1 if a < b else 1 if a > b
func Compare(a, b any) (int, bool) {
	if aNum, ok := ToNumber(a); ok {
		bNum, ok := ToNumber(b)
		if !ok || math.IsNaN(aNum) || math.IsNaN(bNum) {
			return 0, false
		}
		switch {
		case aNum < bNum:
			return -1, true
		case aNum > bNum:
			return 1, true
		}
		return 0, true
	}

	aStr, aOk := a.(string)
	bStr, bOk := b.(string)
	if aOk && bOk {
		return strings.Compare(aStr, bStr), true
	}
	return 0, false
}

// Equal is raw equality: numbers by value across integer and float kinds,
// strings and booleans by value. Collections and GeoJSON are never equal to
// a scalar operand.
func Equal(a, b any) bool {
	if cmp, ok := Compare(a, b); ok {
		return cmp == 0
	}
	aBool, aOk := a.(bool)
	bBool, bOk := b.(bool)
	return aOk && bOk && aBool == bBool
}

// SameKind reports whether a and b share a scripting type: both numbers or
// both strings.
func SameKind(a, b any) bool {
	_, aNum := ToNumber(a)
	_, bNum := ToNumber(b)
	if aNum || bNum {
		return aNum && bNum
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	return aStr && bStr
}

// ToLuaString coerces strings and numbers the way string library functions
// do; integral numbers print without a fraction.
func ToLuaString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	n, ok := ToNumber(v)
	if !ok {
		return "", false
	}
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1<<63 {
		return strconv.FormatInt(int64(n), 10), true
	}
	return fmt.Sprint(n), true
}

// IsGeoJSON reports whether a bin value is a geospatial document.
func IsGeoJSON(v any) bool {
	_, ok := v.(types.GeoJSON)
	return ok
}

// Elements returns list elements, or map values when v is a map.
func Elements(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case map[any]any:
		values := make([]any, 0, len(val))
		for _, item := range val {
			values = append(values, item)
		}
		return values, true
	case map[string]any:
		values := make([]any, 0, len(val))
		for _, item := range val {
			values = append(values, item)
		}
		return values, true
	default:
		return nil, false
	}
}

// Keys returns map keys; ok is false when v is not a map.
func Keys(v any) ([]any, bool) {
	switch val := v.(type) {
	case map[any]any:
		keys := make([]any, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		return keys, true
	case map[string]any:
		keys := make([]any, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		return keys, true
	default:
		return nil, false
	}
}
