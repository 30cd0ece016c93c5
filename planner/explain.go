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
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type PredicateDescription struct {
	Predicate  string   `json:"predicate"`
	Filter     string   `json:"filter,omitempty"`
	Indexed    bool     `json:"indexed"`
	Pushdown   bool     `json:"pushdown"`
	Expression string   `json:"expression,omitempty"`
	InProcess  bool     `json:"in_process"`
	Trace      []string `json:"trace"`
}

// PlanDescription is the printable form of a Plan.
type PlanDescription struct {
	Statement    string                 `json:"statement"`
	Policy       string                 `json:"policy"`
	CallerFilter bool                   `json:"caller_filter"`
	Filter       string                 `json:"filter,omitempty"`
	Expression   string                 `json:"expression,omitempty"`
	Predicates   []PredicateDescription `json:"predicates"`
}

func Describe(plan *Plan) PlanDescription {
	desc := PlanDescription{
		Statement:    plan.Statement.String(),
		Policy:       plan.Policy,
		CallerFilter: plan.CallerFilter,
		Expression:   plan.Expression,
		Predicates:   make([]PredicateDescription, 0, len(plan.Predicates)),
	}
	if plan.Statement.Filter != nil {
		desc.Filter = plan.Statement.Filter.String()
	}
	for _, pp := range plan.Predicates {
		pd := PredicateDescription{
			Predicate:  pp.Predicate.String(),
			Indexed:    pp.Indexed,
			Pushdown:   pp.Pushdown,
			Expression: pp.Expression,
			InProcess:  pp.InProcess,
		}
		if pp.Filter != nil {
			pd.Filter = pp.Filter.String()
		}
		for _, state := range pp.Trace() {
			pd.Trace = append(pd.Trace, state.String())
		}
		desc.Predicates = append(desc.Predicates, pd)
	}
	return desc
}

func (d PlanDescription) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Explain renders a plan as text, one line per predicate.
func Explain(plan *Plan) string {
	desc := Describe(plan)

	var b strings.Builder
	fmt.Fprintf(&b, "query %s (policy %s)\n", desc.Statement, desc.Policy)
	switch {
	case desc.CallerFilter:
		fmt.Fprintf(&b, "  filter: %s (caller)\n", desc.Filter)
	case desc.Filter != "":
		fmt.Fprintf(&b, "  filter: %s\n", desc.Filter)
	default:
		b.WriteString("  filter: none, full scan\n")
	}
	if desc.Expression != "" {
		fmt.Fprintf(&b, "  expression: %s\n", desc.Expression)
	}
	for idx, pd := range desc.Predicates {
		var notes []string
		if pd.Pushdown {
			notes = append(notes, "index")
		}
		if pd.Expression != "" {
			notes = append(notes, "expression")
		}
		if pd.InProcess {
			notes = append(notes, "in-process")
		}
		fmt.Fprintf(&b, "  [%d] %s -> %s (%s)\n", idx, pd.Predicate, strings.Join(notes, ", "), strings.Join(pd.Trace, " > "))
	}
	return b.String()
}
