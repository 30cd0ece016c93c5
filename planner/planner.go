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
	"context"
	"errors"
	"fmt"

	"github.com/datazip-inc/aeroquery/compiler"
	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils/logger"
)

// Planner turns a statement and a list of ANDed predicates into one store
// query: at most one index filter plus a filter expression.
type Planner struct {
	client  abstract.Client
	policy  PushdownPolicy
	strict  bool
	recheck bool
}

type Option func(*Planner)

func WithPolicy(policy PushdownPolicy) Option {
	return func(p *Planner) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithStrictFallback makes planning fail with compiler.ErrUnsupportedExpression
// when a predicate without an expression form is not answered by the index,
// instead of checking it in process.
func WithStrictFallback() Option {
	return func(p *Planner) { p.strict = true }
}

// WithInProcessRecheck re-evaluates every predicate on each returned row.
func WithInProcessRecheck() Option {
	return func(p *Planner) { p.recheck = true }
}

func New(client abstract.Client, opts ...Option) *Planner {
	p := &Planner{client: client, policy: FirstEligible{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select plans and runs the query. Store errors are returned unchanged.
func (p *Planner) Select(ctx context.Context, stmt *types.Statement, preds ...types.Predicate) (*KeyRecordIterator, error) {
	plan, err := p.Plan(ctx, stmt, preds...)
	if err != nil {
		return nil, err
	}

	stream, err := p.client.Query(ctx, plan.Statement, plan.Expression)
	if err != nil {
		return nil, err
	}
	return newIterator(stream, plan.Residual), nil
}

// Plan builds the query without running it. Planning only fails for a nil
// statement, a failed index listing, or a predicate that cannot be evaluated
// under WithStrictFallback.
func (p *Planner) Plan(ctx context.Context, stmt *types.Statement, preds ...types.Predicate) (*Plan, error) {
	if stmt == nil {
		return nil, fmt.Errorf("statement is required")
	}

	preds, err := p.resolveKeys(stmt, preds)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Statement:    stmt.Clone(),
		Predicates:   make([]*PredicatePlan, len(preds)),
		CallerFilter: stmt.Filter != nil,
		Policy:       p.policy.Name(),
	}

	candidates := make([]Candidate, len(preds))
	for idx, pred := range preds {
		filter, _ := compiler.IndexFilter(pred)
		candidates[idx] = Candidate{Position: idx, Predicate: pred, Filter: filter, Indexed: filter != nil}
		plan.Predicates[idx] = &PredicatePlan{Predicate: pred, Filter: filter, Indexed: filter != nil}
	}

	if !plan.CallerFilter {
		if err := p.markIndexed(ctx, stmt, candidates); err != nil {
			return nil, err
		}
		for idx := range candidates {
			plan.Predicates[idx].Indexed = candidates[idx].Indexed
		}

		if chosen := p.policy.Choose(candidates); chosen >= 0 && chosen < len(candidates) && candidates[chosen].Filter != nil {
			plan.Statement.SetFilter(candidates[chosen].Filter)
			plan.Predicates[chosen].Pushdown = true
			logger.Debugf("pushing down %s as %s", candidates[chosen].Predicate, candidates[chosen].Filter)
		}
	}

	var exprs []string
	for _, pp := range plan.Predicates {
		expr, err := compiler.Expression(pp.Predicate)
		switch {
		case err == nil:
			pp.Expression = expr
			exprs = append(exprs, expr)
		case errors.Is(err, compiler.ErrUnsupportedExpression):
			// the index answers a pushed down geo predicate exactly
			if pp.Pushdown {
				continue
			}
			if p.strict {
				return nil, err
			}
			pp.InProcess = true
			plan.Residual = append(plan.Residual, pp.Predicate)
		default:
			return nil, err
		}
	}
	plan.Expression = compiler.And(exprs...)

	if p.recheck {
		plan.Residual = append([]types.Predicate(nil), preds...)
		for _, pp := range plan.Predicates {
			pp.InProcess = true
		}
	}

	logger.Debugf("query on %s: filter=%v expression=%q residual=%d", plan.Statement, plan.Statement.Filter, plan.Expression, len(plan.Residual))
	return plan, nil
}

// Explain plans the query and renders the plan.
func (p *Planner) Explain(ctx context.Context, stmt *types.Statement, preds ...types.Predicate) (string, error) {
	plan, err := p.Plan(ctx, stmt, preds...)
	if err != nil {
		return "", err
	}
	return Explain(plan), nil
}

// resolveKeys turns user key predicates into digest predicates when the
// client can compute digests. Without a digester they stay as they are and
// are checked in process.
func (p *Planner) resolveKeys(stmt *types.Statement, preds []types.Predicate) ([]types.Predicate, error) {
	digester, ok := p.client.(abstract.KeyDigester)
	if !ok {
		return preds, nil
	}

	var resolved []types.Predicate
	for idx, pred := range preds {
		if pred.Meta() != types.MetaKey {
			continue
		}
		if resolved == nil {
			resolved = append([]types.Predicate(nil), preds...)
		}
		digest, err := digester.Digest(stmt.Namespace, stmt.SetName, pred.Operand(0))
		if err != nil {
			return nil, fmt.Errorf("failed to compute digest for %s: %w", pred, err)
		}
		if resolved[idx], err = types.NewDigestPredicate(digest); err != nil {
			return nil, err
		}
		logger.Debugf("resolved %s to %s", pred, resolved[idx])
	}
	if resolved == nil {
		return preds, nil
	}
	return resolved, nil
}

// markIndexed checks candidates against the store's indexes when the client
// can list them; otherwise every compiled filter is assumed servable.
func (p *Planner) markIndexed(ctx context.Context, stmt *types.Statement, candidates []Candidate) error {
	lister, ok := p.client.(abstract.IndexLister)
	if !ok {
		return nil
	}
	hasFilter := false
	for _, candidate := range candidates {
		hasFilter = hasFilter || candidate.Filter != nil
	}
	if !hasFilter {
		return nil
	}

	indexes, err := lister.Indexes(ctx, stmt.Namespace)
	if err != nil {
		return err
	}

	for idx := range candidates {
		if candidates[idx].Filter == nil {
			continue
		}
		candidates[idx].Indexed = false
		for _, index := range indexes {
			if index.Set != "" && index.Set != stmt.SetName {
				continue
			}
			if index.Supports(candidates[idx].Filter) {
				candidates[idx].Indexed = true
				break
			}
		}
	}
	return nil
}
