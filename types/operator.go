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
	"slices"
	"strings"
)

// CollectionContext says which part of a bin a predicate targets.
type CollectionContext int

const (
	Scalar CollectionContext = iota
	ListElements
	MapKeys
	MapValues
)

func (c CollectionContext) String() string {
	switch c {
	case ListElements:
		return "list"
	case MapKeys:
		return "mapkeys"
	case MapValues:
		return "mapvalues"
	default:
		return "default"
	}
}

func (c CollectionContext) IsCollection() bool { return c != Scalar }

// ParseCollectionContext accepts the index info vocabulary.
func ParseCollectionContext(s string) (CollectionContext, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "scalar", "none":
		return Scalar, nil
	case "list":
		return ListElements, nil
	case "mapkeys":
		return MapKeys, nil
	case "mapvalues":
		return MapValues, nil
	default:
		return Scalar, fmt.Errorf("unknown collection context: %s", s)
	}
}

type Operator int

const (
	Equal Operator = iota
	GreaterThan
	GreaterOrEqual
	LessThan
	LessOrEqual
	NotEqual
	Between
	StartsWith
	EndsWith
	Contains
	GeoWithinRegion
	GeoWithinRadius
	GeoContains
)

var operatorNames = map[Operator]string{
	Equal:           "EQ",
	GreaterThan:     "GT",
	GreaterOrEqual:  "GTEQ",
	LessThan:        "LT",
	LessOrEqual:     "LTEQ",
	NotEqual:        "NOTEQ",
	Between:         "BETWEEN",
	StartsWith:      "START_WITH",
	EndsWith:        "ENDS_WITH",
	Contains:        "CONTAINS",
	GeoWithinRegion: "GEO_WITHIN_REGION",
	GeoWithinRadius: "GEO_WITHIN_RADIUS",
	GeoContains:     "GEO_CONTAINS",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

func (o Operator) IsGeo() bool {
	return o == GeoWithinRegion || o == GeoWithinRadius || o == GeoContains
}

// OperatorSpec is the single source of truth for operand arity, accepted
// operand types and legal contexts. Predicate validation and both compilers
// consult it.
type OperatorSpec struct {
	Arity    int
	Types    []ParticleType
	SameType bool
	Contexts []CollectionContext
}

var (
	orderedTypes   = []ParticleType{ParticleInteger, ParticleFloat, ParticleString}
	numeric        = []ParticleType{ParticleInteger, ParticleFloat}
	allContexts    = []CollectionContext{Scalar, ListElements, MapKeys, MapValues}
	scalarOnly     = []CollectionContext{Scalar}
	collectionOnly = []CollectionContext{ListElements, MapKeys, MapValues}
)

var operatorSpecs = map[Operator]OperatorSpec{
	Equal:           {Arity: 1, Types: orderedTypes, Contexts: scalarOnly},
	NotEqual:        {Arity: 1, Types: orderedTypes, Contexts: scalarOnly},
	GreaterThan:     {Arity: 1, Types: orderedTypes, Contexts: scalarOnly},
	GreaterOrEqual:  {Arity: 1, Types: orderedTypes, Contexts: scalarOnly},
	LessThan:        {Arity: 1, Types: orderedTypes, Contexts: scalarOnly},
	LessOrEqual:     {Arity: 1, Types: orderedTypes, Contexts: scalarOnly},
	Between:         {Arity: 2, Types: orderedTypes, SameType: true, Contexts: allContexts},
	StartsWith:      {Arity: 1, Types: []ParticleType{ParticleString}, Contexts: scalarOnly},
	EndsWith:        {Arity: 1, Types: []ParticleType{ParticleString}, Contexts: scalarOnly},
	Contains:        {Arity: 1, Types: orderedTypes, Contexts: collectionOnly},
	GeoWithinRegion: {Arity: 1, Types: []ParticleType{ParticleGeoJSON}, Contexts: allContexts},
	GeoContains:     {Arity: 1, Types: []ParticleType{ParticleGeoJSON}, Contexts: allContexts},
	GeoWithinRadius: {Arity: 3, Types: numeric, Contexts: allContexts},
}

// Spec returns the table entry for o.
func (o Operator) Spec() (OperatorSpec, bool) {
	spec, ok := operatorSpecs[o]
	return spec, ok
}

// AllOperators lists the closed operator set in declaration order.
func AllOperators() []Operator {
	return []Operator{
		Equal, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual, NotEqual,
		Between, StartsWith, EndsWith, Contains,
		GeoWithinRegion, GeoWithinRadius, GeoContains,
	}
}

// AllContexts lists every collection context.
func AllContexts() []CollectionContext {
	return append([]CollectionContext(nil), allContexts...)
}

func (s OperatorSpec) AcceptsType(t ParticleType) bool {
	return slices.Contains(s.Types, t)
}

func (s OperatorSpec) AcceptsContext(c CollectionContext) bool {
	return slices.Contains(s.Contexts, c)
}

func (c CollectionContext) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CollectionContext) UnmarshalText(text []byte) error {
	parsed, err := ParseCollectionContext(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
