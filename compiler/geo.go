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
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"github.com/datazip-inc/aeroquery/types"
)

// mean earth radius in meters, as used by the server's geo index
const earthRadius = 6371000.0

const aeroCircle = "AeroCircle"

// shape is a parsed GeoJSON document: a point, or a region made of polygons
// or a circle.
type shape struct {
	point    *geom.Point
	polygons []*geom.Polygon
	circle   *circle
}

type circle struct {
	lng, lat, radius float64
}

func (s *shape) isRegion() bool { return s.circle != nil || len(s.polygons) > 0 }

func parseShape(doc string) (*shape, error) {
	var head struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal([]byte(doc), &head); err != nil {
		return nil, fmt.Errorf("invalid geojson: %s", err)
	}

	if head.Type == aeroCircle {
		var coords []json.RawMessage
		if err := json.Unmarshal(head.Coordinates, &coords); err != nil || len(coords) != 2 {
			return nil, fmt.Errorf("invalid %s coordinates", aeroCircle)
		}
		var center []float64
		var radius float64
		if err := json.Unmarshal(coords[0], &center); err != nil || len(center) != 2 {
			return nil, fmt.Errorf("invalid %s center", aeroCircle)
		}
		if err := json.Unmarshal(coords[1], &radius); err != nil || radius < 0 {
			return nil, fmt.Errorf("invalid %s radius", aeroCircle)
		}
		return &shape{circle: &circle{lng: center[0], lat: center[1], radius: radius}}, nil
	}

	var g geom.T
	if err := geojson.Unmarshal([]byte(doc), &g); err != nil {
		return nil, fmt.Errorf("invalid geojson: %s", err)
	}
	switch t := g.(type) {
	case *geom.Point:
		return &shape{point: t}, nil
	case *geom.Polygon:
		return &shape{polygons: []*geom.Polygon{t}}, nil
	case *geom.MultiPolygon:
		s := &shape{}
		for idx := 0; idx < t.NumPolygons(); idx++ {
			s.polygons = append(s.polygons, t.Polygon(idx))
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported geojson type %s", head.Type)
	}
}

// contains reports whether region s covers the point at lng/lat. Polygon
// boundaries count as inside; holes do not.
func (s *shape) contains(lng, lat float64) bool {
	if s.circle != nil {
		return haversine(s.circle.lng, s.circle.lat, lng, lat) <= s.circle.radius
	}
	coord := geom.Coord{lng, lat}
	for _, polygon := range s.polygons {
		if polygon.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(geom.XY, coord, polygon.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for ring := 1; ring < polygon.NumLinearRings(); ring++ {
			if xy.IsPointInRing(geom.XY, coord, polygon.LinearRing(ring).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// haversine is the great-circle distance in meters.
func haversine(lng1, lat1, lng2, lat2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

// geoCandidate parses a bin value stored as GeoJSON.
func geoCandidate(v any) (*shape, bool) {
	doc, ok := v.(types.GeoJSON)
	if !ok {
		return nil, false
	}
	s, err := parseShape(string(doc))
	if err != nil {
		return nil, false
	}
	return s, true
}

func pointWithinRegion(candidate any, region *shape) bool {
	s, ok := geoCandidate(candidate)
	if !ok || s.point == nil {
		return false
	}
	return region.contains(s.point.X(), s.point.Y())
}

func pointWithinRadius(candidate any, lng, lat, radius float64) bool {
	s, ok := geoCandidate(candidate)
	if !ok || s.point == nil {
		return false
	}
	return haversine(lng, lat, s.point.X(), s.point.Y()) <= radius
}

func regionContainsPoint(candidate any, point *shape) bool {
	s, ok := geoCandidate(candidate)
	if !ok || !s.isRegion() || point.point == nil {
		return false
	}
	return s.contains(point.point.X(), point.point.Y())
}

// geoMatch evaluates a geo lookup against the candidate values of a bin.
func geoMatch(kind types.FilterKind, geoJSON string, lng, lat, radius float64, candidates []any) bool {
	var operand *shape
	if kind != types.FilterGeoWithinRadius {
		parsed, err := parseShape(geoJSON)
		if err != nil {
			return false
		}
		operand = parsed
	}

	for _, candidate := range candidates {
		switch kind {
		case types.FilterGeoWithinRegion:
			if operand.isRegion() && pointWithinRegion(candidate, operand) {
				return true
			}
		case types.FilterGeoWithinRadius:
			if pointWithinRadius(candidate, lng, lat, radius) {
				return true
			}
		case types.FilterGeoContainsPoint:
			if regionContainsPoint(candidate, operand) {
				return true
			}
		}
	}
	return false
}
