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

package planner

import (
	"github.com/datazip-inc/aeroquery/types"
)

// Candidate is a predicate offered to a PushdownPolicy.
type Candidate struct {
	Position  int
	Predicate types.Predicate
	// Filter is nil when the predicate has no index lookup form
	Filter *types.IndexFilter
	// Indexed is false only when the store reported its indexes and none can
	// serve Filter
	Indexed bool
}

func (c Candidate) Eligible() bool {
	return c.Filter != nil && c.Indexed
}

// PushdownPolicy picks the candidate whose filter is pushed to the index.
// It returns -1 to push nothing.
type PushdownPolicy interface {
	Choose(candidates []Candidate) int
	Name() string
}

// FirstEligible pushes the first predicate, in input order, that has an
// index lookup form and a matching index.
type FirstEligible struct{}

func (FirstEligible) Choose(candidates []Candidate) int {
	for idx, candidate := range candidates {
		if candidate.Eligible() {
			return idx
		}
	}
	return -1
}

func (FirstEligible) Name() string { return "first-eligible" }

// HintPolicy pushes the first eligible predicate on Field, and nothing when
// there is none.
type HintPolicy struct {
	Field string
}

func (h HintPolicy) Choose(candidates []Candidate) int {
	for idx, candidate := range candidates {
		if candidate.Eligible() && candidate.Predicate.Field() == h.Field {
			return idx
		}
	}
	return -1
}

func (h HintPolicy) Name() string { return "hint:" + h.Field }

// NoPushdown always scans and filters with the expression only.
type NoPushdown struct{}

func (NoPushdown) Choose([]Candidate) int { return -1 }

func (NoPushdown) Name() string { return "none" }
