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

	"github.com/datazip-inc/aeroquery/types"
)

type Config interface {
	Validate() error
}

// RecordStream yields query results until the channel closes. Close releases
// the stream and may be called more than once.
type RecordStream interface {
	Results() <-chan *types.Result
	Close() error
}

// Client is the store contract the planner needs: run a statement with an
// optional filter expression.
type Client interface {
	Query(ctx context.Context, stmt *types.Statement, expression string) (RecordStream, error)
	Close() error
}

// IndexLister is implemented by clients that can report secondary indexes.
type IndexLister interface {
	Indexes(ctx context.Context, namespace string) ([]types.Index, error)
}

// KeyDigester computes the digest a store files a user key under, so key
// predicates can be checked by the store.
type KeyDigester interface {
	Digest(namespace, set string, key types.Value) ([]byte, error)
}

// Driver is a configurable store client used by the command line.
type Driver interface {
	Client
	IndexLister
	GetConfigRef() Config
	Type() string
	// Setup connects and installs the qualifiers module when configured
	Setup(ctx context.Context) error
}
