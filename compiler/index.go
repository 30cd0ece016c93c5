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
	"github.com/datazip-inc/aeroquery/types"
)

// IndexFilter compiles p into a secondary index lookup. ok is false when no
// index lookup can express p; that is a normal outcome, not an error.
func IndexFilter(p types.Predicate) (*types.IndexFilter, bool) {
	if p.IsMeta() {
		return nil, false
	}

	filter := &types.IndexFilter{Bin: p.Field(), Collection: p.Context()}

	switch p.Operator() {
	case types.GeoWithinRegion:
		region, err := p.Operand(0).AsText()
		if err != nil {
			return nil, false
		}
		filter.Kind = types.FilterGeoWithinRegion
		filter.GeoJSON = region
		return filter, true
	case types.GeoContains:
		point, err := p.Operand(0).AsText()
		if err != nil {
			return nil, false
		}
		filter.Kind = types.FilterGeoContainsPoint
		filter.GeoJSON = point
		return filter, true
	case types.GeoWithinRadius:
		lng, lngErr := p.Operand(0).AsNumber()
		lat, latErr := p.Operand(1).AsNumber()
		radius, radiusErr := p.Operand(2).AsNumber()
		if lngErr != nil || latErr != nil || radiusErr != nil {
			return nil, false
		}
		filter.Kind = types.FilterGeoWithinRadius
		filter.Longitude, filter.Latitude, filter.Radius = lng, lat, radius
		return filter, true
	case types.Between:
		begin, beginErr := p.Operand(0).AsInteger()
		end, endErr := p.Operand(1).AsInteger()
		if beginErr != nil || endErr != nil {
			return nil, false
		}
		filter.Kind = types.FilterRange
		filter.Begin, filter.End = begin, end
		return filter, true
	}

	if p.Context() == types.Scalar {
		// a Float operand is not pushed as a string filter: the index would
		// compare text while the expression compares numbers
		if p.Operator() != types.Equal || !indexable(p.Operand(0)) {
			return nil, false
		}
		filter.Kind = types.FilterEqual
		filter.Value = p.Operand(0)
		return filter, true
	}

	if p.Operator() != types.Contains || !indexable(p.Operand(0)) {
		return nil, false
	}
	filter.Kind = types.FilterContains
	filter.Value = p.Operand(0)
	return filter, true
}

// indexable reports whether a secondary index stores values of v's type.
// Indexes hold integers and strings only.
func indexable(v types.Value) bool {
	return v.Type() == types.ParticleInteger || v.Type() == types.ParticleString
}

// Pushdownable reports whether p compiles to an index lookup.
func Pushdownable(p types.Predicate) bool {
	_, ok := IndexFilter(p)
	return ok
}
