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
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/datazip-inc/aeroquery/constants"
)

// ParseQualifiers parses a conjunction of qualifier clauses, e.g.
//
//	age between 25 and 29 and color = "blue" and tags list contains "dogs7"
//
// Each clause is `<field> [list|mapkeys|mapvalues] <op> <values>`. Clauses are
// joined by `and` only.
func ParseQualifiers(expr string) ([]Predicate, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &qualifierParser{tokens: tokens}

	var predicates []Predicate
	for !p.done() {
		if len(predicates) > 0 {
			if !p.acceptKeyword("and") {
				return nil, p.errorf("expected 'and'")
			}
		}
		pred, err := p.clause()
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, pred)
	}
	return predicates, nil
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenNumber
	tokenString
	tokenGeo
	tokenSymbol
	tokenComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokenComma, text: ",", pos: i})
			i++
		case r == '"':
			text, next, err := readQuoted(runes, i, '"')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, text: text, pos: i})
			i = next
		case (r == 'g' || r == 'G') && hasPrefixFold(runes[i:], "geo'"):
			text, next, err := readQuoted(runes, i+3, '\'')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenGeo, text: text, pos: i})
			i = next
		case strings.ContainsRune("=!<>", r):
			start := i
			i++
			if i < len(runes) && runes[i] == '=' {
				i++
			}
			op := string(runes[start:i])
			if op == "!" {
				return nil, fmt.Errorf("unexpected '!' at position %d", start)
			}
			tokens = append(tokens, token{kind: tokenSymbol, text: op, pos: start})
		case unicode.IsDigit(r) || ((r == '-' || r == '+' || r == '.') && i+1 < len(runes) && (unicode.IsDigit(runes[i+1]) || runes[i+1] == '.')):
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || strings.ContainsRune(".eE", runes[i]) ||
				((runes[i] == '-' || runes[i] == '+') && (runes[i-1] == 'e' || runes[i-1] == 'E'))) {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_' || r == '@':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || strings.ContainsRune("_@.-", runes[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[start:i]), pos: start})
		case r == '`':
			text, next, err := readQuoted(runes, i, '`')
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenWord, text: text, pos: i})
			i = next
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}
	return tokens, nil
}

// readQuoted reads a literal opened by quote at runes[start]; backslash
// escapes the quote and itself.
func readQuoted(runes []rune, start int, quote rune) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) && (runes[i+1] == quote || runes[i+1] == '\\') {
				sb.WriteRune(runes[i+1])
				i++
				continue
			}
			sb.WriteRune(runes[i])
		case quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteRune(runes[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated literal starting at position %d", start)
}

func hasPrefixFold(runes []rune, prefix string) bool {
	if len(runes) < len(prefix) {
		return false
	}
	return strings.EqualFold(string(runes[:len(prefix)]), prefix)
}

var dslOperators = map[string]Operator{
	"=":              Equal,
	"==":             Equal,
	"!=":             NotEqual,
	">":              GreaterThan,
	">=":             GreaterOrEqual,
	"<":              LessThan,
	"<=":             LessOrEqual,
	"between":        Between,
	"startswith":     StartsWith,
	"endswith":       EndsWith,
	"contains":       Contains,
	"within_region":  GeoWithinRegion,
	"within_radius":  GeoWithinRadius,
	"contains_point": GeoContains,
}

type qualifierParser struct {
	tokens []token
	pos    int
}

func (p *qualifierParser) done() bool { return p.pos >= len(p.tokens) }

func (p *qualifierParser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *qualifierParser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *qualifierParser) acceptKeyword(word string) bool {
	tok, ok := p.peek()
	if ok && tok.kind == tokenWord && strings.EqualFold(tok.text, word) {
		p.pos++
		return true
	}
	return false
}

func (p *qualifierParser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok, ok := p.peek(); ok {
		return fmt.Errorf("failed to parse qualifiers at position %d (%q): %s", tok.pos, tok.text, msg)
	}
	return fmt.Errorf("failed to parse qualifiers at end of input: %s", msg)
}

func (p *qualifierParser) clause() (Predicate, error) {
	fieldTok, ok := p.next()
	if !ok || fieldTok.kind != tokenWord {
		return Predicate{}, p.errorf("expected field name")
	}
	field := fieldTok.text

	ctx := Scalar
	if tok, ok := p.peek(); ok && tok.kind == tokenWord {
		switch strings.ToLower(tok.text) {
		case "list", "mapkeys", "mapvalues":
			ctx, _ = ParseCollectionContext(tok.text)
			p.pos++
		}
	}

	opTok, ok := p.next()
	if !ok || (opTok.kind != tokenWord && opTok.kind != tokenSymbol) {
		return Predicate{}, p.errorf("expected operator after %s", field)
	}
	op, ok := dslOperators[strings.ToLower(opTok.text)]
	if !ok {
		return Predicate{}, fmt.Errorf("failed to parse qualifiers: unknown operator %q", opTok.text)
	}

	var operands []Value
	switch op {
	case Between:
		lo, err := p.literal()
		if err != nil {
			return Predicate{}, err
		}
		if !p.acceptKeyword("and") {
			return Predicate{}, p.errorf("expected 'and' in between")
		}
		hi, err := p.literal()
		if err != nil {
			return Predicate{}, err
		}
		operands = []Value{lo, hi}
	case GeoWithinRadius:
		for idx := 0; idx < 3; idx++ {
			if idx > 0 {
				if tok, ok := p.next(); !ok || tok.kind != tokenComma {
					return Predicate{}, p.errorf("within_radius expects lng, lat, radius")
				}
			}
			v, err := p.literal()
			if err != nil {
				return Predicate{}, err
			}
			operands = append(operands, v)
		}
	default:
		v, err := p.literal()
		if err != nil {
			return Predicate{}, err
		}
		operands = []Value{v}
	}

	switch strings.ToLower(field) {
	case constants.GenerationField:
		return NewGenerationPredicate(op, operands...)
	case constants.ExpiryField:
		return NewExpiryPredicate(op, operands...)
	case constants.KeyField, constants.DigestField:
		return keyPredicate(strings.ToLower(field), op, operands)
	}
	return NewPredicate(field, ctx, op, operands...)
}

// keyPredicate builds `@key = v` or `@digest = 'hex'`.
func keyPredicate(field string, op Operator, operands []Value) (Predicate, error) {
	if op != Equal || len(operands) != 1 {
		return Predicate{}, &MalformedPredicateError{Field: field, Operator: op, Reason: "only = is allowed"}
	}
	if field == constants.KeyField {
		return NewKeyPredicate(operands[0])
	}
	text, err := operands[0].AsText()
	if err != nil {
		return Predicate{}, &MalformedPredicateError{Field: field, Operator: op, Reason: "digest must be a hex string"}
	}
	digest, err := hex.DecodeString(text)
	if err != nil {
		return Predicate{}, &MalformedPredicateError{Field: field, Operator: op, Reason: fmt.Sprintf("digest is not hex: %s", err)}
	}
	return NewDigestPredicate(digest)
}

func (p *qualifierParser) literal() (Value, error) {
	tok, ok := p.next()
	if !ok {
		return Value{}, p.errorf("expected a value")
	}
	switch tok.kind {
	case tokenString:
		return TextValue(tok.text), nil
	case tokenGeo:
		return GeoJSONValue(tok.text), nil
	case tokenNumber:
		if !strings.ContainsAny(tok.text, ".eE") {
			i, err := strconv.ParseInt(tok.text, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("failed to parse integer %s: %s", tok.text, err)
			}
			return IntegerValue(i), nil
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse number %s: %s", tok.text, err)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("failed to parse qualifiers: expected a value at position %d, got %q", tok.pos, tok.text)
	}
}
