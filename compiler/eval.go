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

package compiler

import (
	"strings"

	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils/typeutils"
)

// Matches evaluates p against rec in process. Non-geo predicates return the
// same answer the compiled expression gives on the server: a missing bin fails
// every comparison except `~=`, mixed types never order, and a runtime error in
// the expression rejects the row.
func Matches(p types.Predicate, rec *types.KeyRecord) bool {
	field := fieldValue(p, rec)
	v := p.Operand(0).Interface()

	switch p.Operator() {
	case types.Equal:
		return typeutils.Equal(field, v)
	case types.NotEqual:
		return !typeutils.Equal(field, v)
	case types.GreaterThan:
		cmp, ok := typeutils.Compare(field, v)
		return ok && cmp > 0
	case types.GreaterOrEqual:
		cmp, ok := typeutils.Compare(field, v)
		return ok && cmp >= 0
	case types.LessThan:
		cmp, ok := typeutils.Compare(field, v)
		return ok && cmp < 0
	case types.LessOrEqual:
		cmp, ok := typeutils.Compare(field, v)
		return ok && cmp <= 0
	case types.StartsWith:
		prefix, _ := p.Operand(0).AsText()
		s, ok := typeutils.ToLuaString(field)
		return ok && strings.HasPrefix(s, prefix)
	case types.EndsWith:
		suffix, _ := p.Operand(0).AsText()
		if suffix == "" {
			return true
		}
		s, ok := typeutils.ToLuaString(field)
		return ok && strings.HasSuffix(s, suffix)
	case types.Contains:
		if p.Context() == types.MapKeys {
			keys, _ := typeutils.Keys(field)
			return anyEqual(keys, v)
		}
		elems, _ := typeutils.Elements(field)
		return anyEqual(elems, v)
	case types.Between:
		lo, hi := v, p.Operand(1).Interface()
		switch p.Context() {
		case types.Scalar:
			return inRange(field, lo, hi)
		case types.MapKeys:
			keys, _ := typeutils.Keys(field)
			return anyInRange(keys, lo, hi)
		default:
			elems, _ := typeutils.Elements(field)
			return anyInRange(elems, lo, hi)
		}
	case types.GeoWithinRegion, types.GeoWithinRadius, types.GeoContains:
		filter, ok := IndexFilter(p)
		if !ok {
			return false
		}
		return geoMatch(filter.Kind, filter.GeoJSON, filter.Longitude, filter.Latitude, filter.Radius, candidates(field, p.Context()))
	}
	return false
}

// MatchesAll reports whether rec satisfies every predicate.
func MatchesAll(rec *types.KeyRecord, preds ...types.Predicate) bool {
	for _, p := range preds {
		if !Matches(p, rec) {
			return false
		}
	}
	return true
}

// MatchesFilter answers an index lookup the way a secondary index does: only
// values of the index's type are indexed, so an integer lookup never sees a
// float bin and a string lookup never sees a number.
func MatchesFilter(f *types.IndexFilter, bins map[string]any) bool {
	if f == nil {
		return true
	}
	value, ok := bins[f.Bin]
	if !ok || value == nil {
		return false
	}

	var values []any
	switch f.Collection {
	case types.Scalar:
		values = []any{value}
	case types.ListElements:
		list, isList := value.([]any)
		if !isList {
			return false
		}
		values = list
	case types.MapKeys:
		if values, ok = typeutils.Keys(value); !ok {
			return false
		}
	case types.MapValues:
		if _, isList := value.([]any); isList {
			return false
		}
		if values, ok = typeutils.Elements(value); !ok {
			return false
		}
	}

	if f.Kind.IsGeo() {
		return geoMatch(f.Kind, f.GeoJSON, f.Longitude, f.Latitude, f.Radius, values)
	}

	for _, candidate := range values {
		switch f.Kind {
		case types.FilterEqual, types.FilterContains:
			if indexedEqual(candidate, f.Value) {
				return true
			}
		case types.FilterRange:
			if n, isInt := integer(candidate); isInt && n >= f.Begin && n <= f.End {
				return true
			}
		}
	}
	return false
}

func fieldValue(p types.Predicate, rec *types.KeyRecord) any {
	if rec == nil {
		return nil
	}
	switch p.Meta() {
	case types.MetaGeneration:
		return int64(rec.Generation)
	case types.MetaExpiry:
		return int64(rec.Expiration)
	case types.MetaKey:
		if rec.Key == nil {
			return nil
		}
		return rec.Key.UserKey
	case types.MetaDigest:
		if rec.Key == nil || rec.Key.Digest == nil {
			return nil
		}
		return string(rec.Key.Digest)
	}
	v, _ := rec.Bin(p.Field())
	return v
}

// candidates lists the values a collection context addresses.
func candidates(field any, ctx types.CollectionContext) []any {
	switch ctx {
	case types.ListElements:
		list, _ := field.([]any)
		return list
	case types.MapKeys:
		keys, _ := typeutils.Keys(field)
		return keys
	case types.MapValues:
		if _, isList := field.([]any); isList {
			return nil
		}
		values, _ := typeutils.Elements(field)
		return values
	}
	if field == nil {
		return nil
	}
	return []any{field}
}

func anyEqual(values []any, v any) bool {
	for _, item := range values {
		if typeutils.Equal(item, v) {
			return true
		}
	}
	return false
}

// inRange mirrors `f >= lo and f <= hi`.
func inRange(v, lo, hi any) bool {
	lower, ok := typeutils.Compare(v, lo)
	if !ok || lower < 0 {
		return false
	}
	upper, ok := typeutils.Compare(v, hi)
	return ok && upper <= 0
}

// anyInRange mirrors the rangeKey/rangeValue helpers, which skip items whose
// type differs from the bounds.
func anyInRange(values []any, lo, hi any) bool {
	for _, item := range values {
		if typeutils.SameKind(item, lo) && inRange(item, lo, hi) {
			return true
		}
	}
	return false
}

func integer(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	default:
		return 0, false
	}
}

func indexedEqual(candidate any, want types.Value) bool {
	switch want.Type() {
	case types.ParticleInteger:
		n, ok := integer(candidate)
		expected, _ := want.AsInteger()
		return ok && n == expected
	case types.ParticleString:
		s, ok := candidate.(string)
		expected, _ := want.AsText()
		return ok && s == expected
	}
	return false
}
