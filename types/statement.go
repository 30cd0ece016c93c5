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
)

// Statement identifies the rows a query scans: a namespace, an optional set,
// an optional bin projection and at most one secondary index filter.
type Statement struct {
	Namespace string       `json:"namespace" validate:"required"`
	SetName   string       `json:"set,omitempty"`
	BinNames  []string     `json:"bins,omitempty"`
	Filter    *IndexFilter `json:"filter,omitempty"`
}

func NewStatement(namespace, setName string, binNames ...string) *Statement {
	return &Statement{Namespace: namespace, SetName: setName, BinNames: binNames}
}

func (s *Statement) SetFilter(filter *IndexFilter) {
	s.Filter = filter
}

func (s *Statement) Clone() *Statement {
	clone := &Statement{
		Namespace: s.Namespace,
		SetName:   s.SetName,
		BinNames:  slices.Clone(s.BinNames),
	}
	if s.Filter != nil {
		filter := *s.Filter
		clone.Filter = &filter
	}
	return clone
}

func (s *Statement) String() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.SetName)
}

type Key struct {
	Namespace string `json:"namespace"`
	SetName   string `json:"set,omitempty"`
	UserKey   any    `json:"key,omitempty"`
	Digest    []byte `json:"digest,omitempty"`
}

func (k *Key) String() string {
	if k == nil {
		return "<nil>"
	}
	if k.UserKey != nil {
		return fmt.Sprintf("%s:%s:%v", k.Namespace, k.SetName, k.UserKey)
	}
	return fmt.Sprintf("%s:%s:%x", k.Namespace, k.SetName, k.Digest)
}

// KeyRecord is one row produced by a query. Bin values are int64, float64,
// string, bool, GeoJSON, []any or map[any]any.
type KeyRecord struct {
	Key        *Key           `json:"key,omitempty"`
	Bins       map[string]any `json:"bins"`
	Generation uint32         `json:"generation"`
	Expiration uint32         `json:"ttl"`
}

// Bin returns the named bin value and whether it is present.
func (r *KeyRecord) Bin(name string) (any, bool) {
	if r == nil || r.Bins == nil {
		return nil, false
	}
	v, ok := r.Bins[name]
	return v, ok && v != nil
}

// Result is what a record stream yields: a record or a store error.
type Result struct {
	Record *KeyRecord
	Err    error
}
