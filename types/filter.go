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
	"fmt"
	"strconv"
)

type FilterKind int

const (
	FilterEqual FilterKind = iota
	FilterRange
	FilterContains
	FilterGeoWithinRegion
	FilterGeoWithinRadius
	FilterGeoContainsPoint
)

func (k FilterKind) String() string {
	switch k {
	case FilterEqual:
		return "equal"
	case FilterRange:
		return "range"
	case FilterContains:
		return "contains"
	case FilterGeoWithinRegion:
		return "geo_within_region"
	case FilterGeoWithinRadius:
		return "geo_within_radius"
	case FilterGeoContainsPoint:
		return "geo_contains_point"
	default:
		return "unknown"
	}
}

func (k FilterKind) IsGeo() bool {
	return k == FilterGeoWithinRegion || k == FilterGeoWithinRadius || k == FilterGeoContainsPoint
}

// IndexFilter describes a secondary index lookup. Only the fields relevant to
// Kind are set: Value for equal/contains, Begin/End for range, GeoJSON for
// region and point containment, Longitude/Latitude/Radius for radius.
type IndexFilter struct {
	Bin        string            `json:"bin"`
	Collection CollectionContext `json:"collection"`
	Kind       FilterKind        `json:"kind"`
	Value      Value             `json:"-"`
	Begin      int64             `json:"begin,omitempty"`
	End        int64             `json:"end,omitempty"`
	GeoJSON    string            `json:"geojson,omitempty"`
	Longitude  float64           `json:"longitude,omitempty"`
	Latitude   float64           `json:"latitude,omitempty"`
	Radius     float64           `json:"radius,omitempty"`
}

// IndexType is the secondary index type able to serve the filter.
func (f *IndexFilter) IndexType() IndexType {
	switch {
	case f.Kind.IsGeo():
		return IndexGeo2DSphere
	case f.Kind == FilterRange:
		return IndexNumeric
	case f.Value.Type() == ParticleString:
		return IndexString
	default:
		return IndexNumeric
	}
}

func (f *IndexFilter) String() string {
	var body string
	switch f.Kind {
	case FilterEqual, FilterContains:
		body = f.Value.String()
		if f.Value.Type() == ParticleString {
			body = strconv.Quote(body)
		}
	case FilterRange:
		body = fmt.Sprintf("%d..%d", f.Begin, f.End)
	case FilterGeoWithinRegion, FilterGeoContainsPoint:
		body = f.GeoJSON
	case FilterGeoWithinRadius:
		body = fmt.Sprintf("lng=%s lat=%s radius=%s",
			strconv.FormatFloat(f.Longitude, 'g', -1, 64),
			strconv.FormatFloat(f.Latitude, 'g', -1, 64),
			strconv.FormatFloat(f.Radius, 'g', -1, 64))
	}
	return fmt.Sprintf("%s(%s[%s] %s)", f.Kind, f.Bin, f.Collection, body)
}
