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

package abstract

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/utils/safego"
)

// EmitFn hands a result to the consumer. It returns false once the stream is
// closed and the producer must stop.
type EmitFn func(result *types.Result) bool

type ProduceFn func(ctx context.Context, emit EmitFn) error

// ChannelStream runs a producer in its own goroutine and exposes its output as
// a channel. A producer error is delivered as the last result.
type ChannelStream struct {
	results chan *types.Result
	cancel  context.CancelFunc
	group   *errgroup.Group
	release func() error

	once sync.Once
	err  error
}

func NewChannelStream(ctx context.Context, buffer int, produce ProduceFn) *ChannelStream {
	return NewChannelStreamWithRelease(ctx, buffer, produce, nil)
}

// NewChannelStreamWithRelease calls release once the producer has stopped,
// on Close.
func NewChannelStreamWithRelease(ctx context.Context, buffer int, produce ProduceFn, release func() error) *ChannelStream {
	ctx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(ctx)
	stream := &ChannelStream{
		results: make(chan *types.Result, buffer),
		cancel:  cancel,
		group:   group,
		release: release,
	}

	emit := func(result *types.Result) bool {
		select {
		case <-groupCtx.Done():
			return false
		case stream.results <- result:
			return true
		}
	}

	group.Go(func() error {
		defer close(stream.results)

		err := runProducer(groupCtx, produce, emit)
		if err != nil && !errors.Is(err, context.Canceled) && groupCtx.Err() == nil {
			emit(&types.Result{Err: err})
		}
		return err
	})

	return stream
}

// runProducer turns a producer panic into its error so the consumer sees it.
func runProducer(ctx context.Context, produce ProduceFn, emit EmitFn) (err error) {
	defer safego.RecoverError(&err)
	return produce(ctx, emit)
}

func (s *ChannelStream) Results() <-chan *types.Result {
	return s.results
}

func (s *ChannelStream) Close() error {
	s.once.Do(func() {
		s.cancel()
		// producer errors already reached the consumer as results
		_ = s.group.Wait()
		if s.release != nil {
			s.err = s.release()
		}
	})
	return s.err
}
