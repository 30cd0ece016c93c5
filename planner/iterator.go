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
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/datazip-inc/aeroquery/compiler"
	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/types"
)

// KeyRecordIterator walks the rows of a query. Rows failing a residual
// predicate are skipped. Close may be called any number of times from any
// goroutine; the underlying stream is closed exactly once.
type KeyRecordIterator struct {
	stream   abstract.RecordStream
	residual []types.Predicate

	current *types.KeyRecord
	err     error

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newIterator(stream abstract.RecordStream, residual []types.Predicate) *KeyRecordIterator {
	return &KeyRecordIterator{
		stream:   stream,
		residual: residual,
		closed:   make(chan struct{}),
	}
}

// Next advances to the next row. It returns false when the rows are
// exhausted, the iterator is closed, or the store failed; Err tells them
// apart.
func (it *KeyRecordIterator) Next() bool {
	for {
		select {
		case <-it.closed:
			it.current = nil
			return false
		default:
		}

		select {
		case <-it.closed:
			it.current = nil
			return false
		case result, ok := <-it.stream.Results():
			if !ok {
				it.current = nil
				// exhausted streams are released right away; Close returns the error
				_ = it.Close()
				return false
			}
			if result == nil {
				continue
			}
			if result.Err != nil {
				it.err = result.Err
				it.current = nil
				_ = it.Close()
				return false
			}
			if result.Record == nil || !compiler.MatchesAll(result.Record, it.residual...) {
				continue
			}
			it.current = result.Record
			return true
		}
	}
}

// Record is the row Next moved to.
func (it *KeyRecordIterator) Record() *types.KeyRecord {
	return it.current
}

// Err is the store error that ended iteration, unchanged. Errors releasing
// the stream are returned by Close.
func (it *KeyRecordIterator) Err() error {
	return it.err
}

func (it *KeyRecordIterator) Close() error {
	it.closeOnce.Do(func() {
		close(it.closed)
		it.closeErr = it.stream.Close()
	})
	return it.closeErr
}

// Collect drains the iterator and closes it. Cancelling ctx closes the
// iterator early and returns the rows read so far with ctx's error.
func (it *KeyRecordIterator) Collect(ctx context.Context) ([]*types.KeyRecord, error) {
	stop := context.AfterFunc(ctx, func() { _ = it.Close() })
	defer stop()

	var records []*types.KeyRecord
	for it.Next() {
		records = append(records, it.Record())
	}

	var result error
	if it.err != nil {
		result = multierror.Append(result, it.err)
	}
	if err := it.Close(); err != nil && err != it.err {
		result = multierror.Append(result, err)
	}
	if ctx.Err() != nil && it.err == nil {
		result = multierror.Append(result, ctx.Err())
	}
	if merr, ok := result.(*multierror.Error); ok && merr.Len() == 1 {
		return records, merr.Errors[0]
	}
	return records, result
}
