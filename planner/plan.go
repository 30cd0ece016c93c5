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

// PredicateState is a step of a predicate through planning:
// Built, then PushdownEligible or Ineligible, then FallbackCompiled when an
// expression exists, and finally Attached or Skipped.
type PredicateState int

const (
	Built PredicateState = iota
	PushdownEligible
	Ineligible
	FallbackCompiled
	Attached
	Skipped
)

func (s PredicateState) String() string {
	switch s {
	case Built:
		return "built"
	case PushdownEligible:
		return "pushdown-eligible"
	case Ineligible:
		return "ineligible"
	case FallbackCompiled:
		return "fallback-compiled"
	case Attached:
		return "attached"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

type PredicatePlan struct {
	Predicate types.Predicate
	// Filter is the compiled index lookup, nil when not representable
	Filter *types.IndexFilter
	// Indexed is false when the store has no index able to serve Filter
	Indexed bool
	// Pushdown marks the predicate whose filter the statement carries
	Pushdown bool
	// Expression is the predicate's part of the filter expression; empty
	// when it has none
	Expression string
	// InProcess marks predicates checked per row by the iterator
	InProcess bool
}

// State is the final planning state.
func (p *PredicatePlan) State() PredicateState {
	if p.Expression != "" {
		return Attached
	}
	return Skipped
}

// Trace lists every state the predicate went through.
func (p *PredicatePlan) Trace() []PredicateState {
	trace := []PredicateState{Built}
	if p.Filter != nil && p.Indexed {
		trace = append(trace, PushdownEligible)
	} else {
		trace = append(trace, Ineligible)
	}
	if p.Expression != "" {
		trace = append(trace, FallbackCompiled)
	}
	return append(trace, p.State())
}

// Plan is the outcome of planning a query.
type Plan struct {
	// Statement is a copy of the caller's statement with the chosen filter
	Statement *types.Statement
	// Expression ANDs the expressions of all predicates
	Expression string
	Predicates []*PredicatePlan
	// Residual predicates are evaluated in process on every row
	Residual []types.Predicate
	// CallerFilter is set when the statement already carried a filter
	CallerFilter bool
	Policy       string
}

// Pushdown returns the predicate whose filter was pushed, if any.
func (p *Plan) Pushdown() (*PredicatePlan, bool) {
	for _, pred := range p.Predicates {
		if pred.Pushdown {
			return pred, true
		}
	}
	return nil, false
}
