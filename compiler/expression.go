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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/datazip-inc/aeroquery/types"
)

// ErrUnsupportedExpression is returned for predicates the record filter
// language cannot express: geo predicates, answered by an index or evaluated
// in process, and user keys, which the server does not keep with the record
// and which resolve to a digest when the store can compute one.
var ErrUnsupportedExpression = errors.New("predicate has no filter expression form")

// Expression compiles p into a boolean Lua expression over the record `rec`.
// The expression only calls the standard string library and the helpers
// shipped in the qualifiers module.
func Expression(p types.Predicate) (string, error) {
	if p.Operator().IsGeo() || p.Meta() == types.MetaKey {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExpression, p)
	}

	f := accessor(p)
	v := literal(p.Operand(0))

	switch p.Operator() {
	case types.Equal:
		return fmt.Sprintf("%s == %s", f, v), nil
	case types.NotEqual:
		return fmt.Sprintf("%s ~= %s", f, v), nil
	case types.GreaterThan:
		return fmt.Sprintf("%s > %s", f, v), nil
	case types.GreaterOrEqual:
		return fmt.Sprintf("%s >= %s", f, v), nil
	case types.LessThan:
		return fmt.Sprintf("%s < %s", f, v), nil
	case types.LessOrEqual:
		return fmt.Sprintf("%s <= %s", f, v), nil
	case types.StartsWith:
		return fmt.Sprintf("string.sub(%s,1,string.len(%s))==%s", f, v, v), nil
	case types.EndsWith:
		return fmt.Sprintf("%s=='' or string.sub(%s,-string.len(%s))==%s", v, f, v, v), nil
	case types.Contains:
		if p.Context() == types.MapKeys {
			return fmt.Sprintf("containsKey(%s, %s)", f, v), nil
		}
		return fmt.Sprintf("containsValue(%s, %s)", f, v), nil
	case types.Between:
		hi := literal(p.Operand(1))
		switch p.Context() {
		case types.Scalar:
			return fmt.Sprintf("%s >= %s and %s <= %s", f, v, f, hi), nil
		case types.MapKeys:
			return fmt.Sprintf("rangeKey(%s, %s, %s)", f, v, hi), nil
		default:
			return fmt.Sprintf("rangeValue(%s, %s, %s)", f, v, hi), nil
		}
	}
	return "", fmt.Errorf("unknown operator %s", p.Operator())
}

// Conjunction ANDs the expressions of preds. Predicates without an expression
// form are returned in unsupported, in input order; any other compile error
// aborts.
func Conjunction(preds ...types.Predicate) (string, []types.Predicate, error) {
	var (
		parts       []string
		unsupported []types.Predicate
	)
	for _, p := range preds {
		expr, err := Expression(p)
		if errors.Is(err, ErrUnsupportedExpression) {
			unsupported = append(unsupported, p)
			continue
		}
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, expr)
	}
	return And(parts...), unsupported, nil
}

// And joins expressions; a single expression is returned unchanged.
func And(exprs ...string) string {
	switch len(exprs) {
	case 0:
		return ""
	case 1:
		return exprs[0]
	}
	wrapped := make([]string, len(exprs))
	for idx, expr := range exprs {
		wrapped[idx] = "(" + expr + ")"
	}
	return strings.Join(wrapped, " and ")
}

func accessor(p types.Predicate) string {
	switch p.Meta() {
	case types.MetaGeneration:
		return "record.gen(rec)"
	case types.MetaExpiry:
		return "record.ttl(rec)"
	case types.MetaDigest:
		return "digestOf(rec)"
	}
	return "rec[" + quote(p.Field()) + "]"
}

func literal(v types.Value) string {
	switch v.Type() {
	case types.ParticleInteger:
		i, _ := v.AsInteger()
		return strconv.FormatInt(i, 10)
	case types.ParticleFloat:
		f, _ := v.AsFloat()
		switch {
		case math.IsNaN(f):
			return "(0/0)"
		case math.IsInf(f, 1):
			return "math.huge"
		case math.IsInf(f, -1):
			return "(-math.huge)"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case types.ParticleString, types.ParticleGeoJSON:
		s, _ := v.AsText()
		return quote(s)
	}
	return "nil"
}

// quote renders s as a single-quoted Lua string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				// decimal escape, padded so a following digit is not absorbed
				fmt.Fprintf(&sb, "\\%03d", c)
				continue
			}
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
