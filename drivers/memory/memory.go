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

package memory

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/datazip-inc/aeroquery/compiler"
	"github.com/datazip-inc/aeroquery/constants"
	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils/logger"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrIndexExists   = errors.New("index already exists")
)

const defaultBuffer = 64

// Store keeps records in memory and answers queries the way the server does:
// index filters need a declared index and filter expressions run through the
// qualifiers Lua module.
type Store struct {
	config *Config

	mu      sync.RWMutex
	sets    map[string]map[string][]*types.KeyRecord // namespace -> set -> records
	indexes []types.Index
	closed  bool
}

func New() *Store {
	return &Store{
		config: &Config{Buffer: defaultBuffer},
		sets:   make(map[string]map[string][]*types.KeyRecord),
	}
}

// config reference; must be pointer
func (s *Store) GetConfigRef() abstract.Config {
	return s.config
}

func (s *Store) Type() string {
	return constants.MemoryDriver
}

// Setup loads the configured fixture, if any.
func (s *Store) Setup(_ context.Context) error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid memory config: %s", err)
	}
	if s.config.Fixture == "" {
		return nil
	}
	if err := s.LoadFixtureFile(s.config.Fixture); err != nil {
		return err
	}
	logger.Infof("loaded fixture %s", s.config.Fixture)
	return nil
}

// Put stores bins under key, replacing any previous record and bumping its
// generation.
func (s *Store) Put(namespace, set string, key any, bins map[string]any, ttl uint32) (*types.KeyRecord, error) {
	// int and int64 keys must file under the same digest
	if value, err := types.ValueOf(key); err == nil && value.Type() == types.ParticleInteger {
		key = value.Interface()
	}
	normalized := make(map[string]any, len(bins))
	for name, value := range bins {
		v, err := normalize(value)
		if err != nil {
			return nil, fmt.Errorf("failed to store bin %s: %s", name, err)
		}
		if v != nil {
			normalized[name] = v
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sets[namespace] == nil {
		s.sets[namespace] = make(map[string][]*types.KeyRecord)
	}
	records := s.sets[namespace][set]

	rec := &types.KeyRecord{
		Key:        &types.Key{Namespace: namespace, SetName: set, UserKey: key, Digest: digest(set, key)},
		Bins:       normalized,
		Generation: 1,
		Expiration: ttl,
	}
	for idx, existing := range records {
		if slices.Equal(existing.Key.Digest, rec.Key.Digest) {
			rec.Generation = existing.Generation + 1
			records[idx] = rec
			return rec, nil
		}
	}
	s.sets[namespace][set] = append(records, rec)
	return rec, nil
}

// CreateIndex declares a secondary index. Filters on bins without a matching
// index fail like they do on the server.
func (s *Store) CreateIndex(index types.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.indexes {
		if existing.Namespace == index.Namespace && existing.Name == index.Name {
			return fmt.Errorf("%w: %s", ErrIndexExists, index.Name)
		}
	}
	if index.State == "" {
		index.State = "RW"
	}
	s.indexes = append(s.indexes, index)
	return nil
}

func (s *Store) Indexes(_ context.Context, namespace string) ([]types.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var indexes []types.Index
	for _, index := range s.indexes {
		if index.Namespace == namespace {
			indexes = append(indexes, index)
		}
	}
	return indexes, nil
}

// Query scans the statement's namespace and set. The index filter, when set,
// is applied first and requires a matching index; the expression is then
// evaluated per record.
func (s *Store) Query(ctx context.Context, stmt *types.Statement, expression string) (abstract.RecordStream, error) {
	if stmt == nil || stmt.Namespace == "" {
		return nil, fmt.Errorf("statement namespace is required")
	}

	s.mu.RLock()
	closed := s.closed
	records := s.snapshot(stmt.Namespace, stmt.SetName)
	indexed := stmt.Filter == nil || s.hasIndex(stmt)
	s.mu.RUnlock()

	if closed {
		return nil, fmt.Errorf("memory store is closed")
	}
	if !indexed {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, stmt.Filter)
	}

	filter, err := newLuaFilter(expression)
	if err != nil {
		return nil, err
	}

	produce := func(ctx context.Context, emit abstract.EmitFn) error {
		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !compiler.MatchesFilter(stmt.Filter, rec.Bins) {
				continue
			}
			ok, err := filter.Match(ctx, rec)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if !emit(&types.Result{Record: project(rec, stmt.BinNames)}) {
				return nil
			}
		}
		return nil
	}

	return abstract.NewChannelStreamWithRelease(ctx, s.config.Buffer, produce, filter.Close), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// snapshot lists records in a stable order; an empty set scans the namespace.
func (s *Store) snapshot(namespace, set string) []*types.KeyRecord {
	sets := s.sets[namespace]
	if set != "" {
		return slices.Clone(sets[set])
	}

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []*types.KeyRecord
	for _, name := range names {
		records = append(records, sets[name]...)
	}
	return records
}

func (s *Store) hasIndex(stmt *types.Statement) bool {
	for _, index := range s.indexes {
		if index.Namespace != stmt.Namespace {
			continue
		}
		if index.Set != "" && index.Set != stmt.SetName {
			continue
		}
		if index.Supports(stmt.Filter) {
			return true
		}
	}
	return false
}

func project(rec *types.KeyRecord, binNames []string) *types.KeyRecord {
	out := *rec
	if len(binNames) == 0 {
		out.Bins = make(map[string]any, len(rec.Bins))
		for name, value := range rec.Bins {
			out.Bins[name] = value
		}
		return &out
	}
	out.Bins = make(map[string]any, len(binNames))
	for _, name := range binNames {
		if value, ok := rec.Bins[name]; ok {
			out.Bins[name] = value
		}
	}
	return &out
}

// Digest returns the digest Put files key under.
func (s *Store) Digest(_, set string, key types.Value) ([]byte, error) {
	if key.Type() != types.ParticleInteger && key.Type() != types.ParticleString {
		return nil, fmt.Errorf("unsupported key type %s", key.Type())
	}
	return digest(set, key.Interface()), nil
}

// digest mimics the server's key digest: a hash over set name and user key.
func digest(set string, key any) []byte {
	h := sha1.New() //nolint:gosec
	_, _ = fmt.Fprintf(h, "%s:%T:%v", set, key, key)
	return h.Sum(nil)
}

// normalize maps Go values onto the bin value shapes: int64, float64, string,
// bool, []byte, GeoJSON, []any and map[any]any.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil, int64, float64, string, bool, []byte, types.GeoJSON:
		return val, nil
	case int, int8, int16, int32, uint8, uint16, uint32, uint, uint64:
		value, err := types.ValueOf(val)
		if err != nil {
			return nil, err
		}
		return value.Interface(), nil
	case float32:
		return float64(val), nil
	case types.Value:
		return val.Interface(), nil
	case []any:
		out := make([]any, len(val))
		for idx, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[idx] = n
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for idx, item := range val {
			out[idx] = item
		}
		return out, nil
	case map[any]any:
		out := make(map[any]any, len(val))
		for key, item := range val {
			k, err := normalize(key)
			if err != nil {
				return nil, err
			}
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[any]any, len(val))
		for key, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported bin value type %T", v)
	}
}
