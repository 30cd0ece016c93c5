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
	"errors"
	"fmt"
	"strings"

	"github.com/datazip-inc/aeroquery/constants"
)

var ErrMalformedPredicate = errors.New("malformed predicate")

type MalformedPredicateError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *MalformedPredicateError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrMalformedPredicate, e.Field, e.Operator, e.Reason)
}

func (e *MalformedPredicateError) Unwrap() error { return ErrMalformedPredicate }

// MetaField marks predicates over record metadata instead of a bin.
type MetaField int

const (
	MetaNone MetaField = iota
	MetaGeneration
	MetaExpiry
	// MetaKey selects a record by its user key.
	MetaKey
	// MetaDigest selects a record by its key digest.
	MetaDigest
)

func (m MetaField) String() string {
	switch m {
	case MetaGeneration:
		return constants.GenerationField
	case MetaExpiry:
		return constants.ExpiryField
	case MetaKey:
		return constants.KeyField
	case MetaDigest:
		return constants.DigestField
	default:
		return ""
	}
}

const maxOperands = 3

// Predicate is an immutable (field, context, operator, operands) tuple.
// Predicates compare with ==.
type Predicate struct {
	field    string
	meta     MetaField
	context  CollectionContext
	operator Operator
	operands [maxOperands]Value
	count    int
}

// NewPredicate validates the operands against the operator table.
func NewPredicate(field string, ctx CollectionContext, op Operator, operands ...Value) (Predicate, error) {
	malformed := func(format string, args ...any) (Predicate, error) {
		return Predicate{}, &MalformedPredicateError{Field: field, Operator: op, Reason: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(field) == "" {
		return malformed("field name is empty")
	}
	spec, ok := op.Spec()
	if !ok {
		return malformed("unknown operator")
	}
	if !spec.AcceptsContext(ctx) {
		return malformed("context %s not allowed", ctx)
	}
	if len(operands) != spec.Arity {
		return malformed("expected %d operand(s), got %d", spec.Arity, len(operands))
	}
	for idx, operand := range operands {
		if !spec.AcceptsType(operand.Type()) {
			return malformed("operand %d has type %s", idx+1, operand.Type())
		}
		if spec.SameType && operand.Type() != operands[0].Type() {
			return malformed("operands must share a type, got %s and %s", operands[0].Type(), operand.Type())
		}
	}
	if op == GeoWithinRadius {
		radius, _ := operands[2].AsNumber()
		if radius < 0 {
			return malformed("radius must not be negative")
		}
	}

	p := Predicate{field: field, context: ctx, operator: op, count: len(operands)}
	copy(p.operands[:], operands)
	return p, nil
}

// MustPredicate panics on a malformed predicate. Meant for fixtures.
func MustPredicate(field string, ctx CollectionContext, op Operator, operands ...Value) Predicate {
	p, err := NewPredicate(field, ctx, op, operands...)
	if err != nil {
		panic(err)
	}
	return p
}

// NewGenerationPredicate filters on the record generation counter.
func NewGenerationPredicate(op Operator, operands ...Value) (Predicate, error) {
	return newMetaPredicate(MetaGeneration, op, operands...)
}

// NewExpiryPredicate filters on the record time-to-live in seconds.
func NewExpiryPredicate(op Operator, operands ...Value) (Predicate, error) {
	return newMetaPredicate(MetaExpiry, op, operands...)
}

func newMetaPredicate(meta MetaField, op Operator, operands ...Value) (Predicate, error) {
	switch op {
	case Equal, NotEqual, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual, Between:
	default:
		return Predicate{}, &MalformedPredicateError{Field: meta.String(), Operator: op, Reason: "operator not allowed on record metadata"}
	}
	for idx, operand := range operands {
		if operand.Type() != ParticleInteger {
			return Predicate{}, &MalformedPredicateError{Field: meta.String(), Operator: op, Reason: fmt.Sprintf("operand %d must be an integer", idx+1)}
		}
	}
	p, err := NewPredicate(meta.String(), Scalar, op, operands...)
	if err != nil {
		return Predicate{}, err
	}
	p.meta = meta
	return p, nil
}

// NewKeyPredicate selects the record stored under an integer or string user
// key. Only Equal applies.
func NewKeyPredicate(key Value) (Predicate, error) {
	if key.Type() != ParticleInteger && key.Type() != ParticleString {
		return Predicate{}, &MalformedPredicateError{Field: constants.KeyField, Operator: Equal, Reason: fmt.Sprintf("key must be an integer or a string, got %s", key.Type())}
	}
	p, err := NewPredicate(constants.KeyField, Scalar, Equal, key)
	if err != nil {
		return Predicate{}, err
	}
	p.meta = MetaKey
	return p, nil
}

// NewDigestPredicate selects the record with the given key digest.
func NewDigestPredicate(digest []byte) (Predicate, error) {
	if len(digest) != constants.DigestSize {
		return Predicate{}, &MalformedPredicateError{Field: constants.DigestField, Operator: Equal, Reason: fmt.Sprintf("digest must be %d bytes, got %d", constants.DigestSize, len(digest))}
	}
	p, err := NewPredicate(constants.DigestField, Scalar, Equal, TextValue(string(digest)))
	if err != nil {
		return Predicate{}, err
	}
	p.meta = MetaDigest
	return p, nil
}

// Digest returns the digest a MetaDigest predicate selects, nil otherwise.
func (p Predicate) Digest() []byte {
	if p.meta != MetaDigest {
		return nil
	}
	return []byte(p.operands[0].s)
}

func (p Predicate) Field() string              { return p.field }
func (p Predicate) Meta() MetaField            { return p.meta }
func (p Predicate) Context() CollectionContext { return p.context }
func (p Predicate) Operator() Operator         { return p.operator }

// Operands returns a copy of the operand list.
func (p Predicate) Operands() []Value {
	return append([]Value(nil), p.operands[:p.count]...)
}

// Operand returns the i-th operand or the zero Value when out of range.
func (p Predicate) Operand(i int) Value {
	if i < 0 || i >= p.count {
		return Value{}
	}
	return p.operands[i]
}

func (p Predicate) IsMeta() bool { return p.meta != MetaNone }

func (p Predicate) Equal(other Predicate) bool { return p == other }

func (p Predicate) String() string {
	parts := []string{p.field, p.context.String(), p.operator.String()}
	if p.meta == MetaDigest {
		return strings.Join(append(parts, hex.EncodeToString(p.Digest())), ":")
	}
	for _, operand := range p.operands[:p.count] {
		parts = append(parts, operand.String())
	}
	return strings.Join(parts, ":")
}
