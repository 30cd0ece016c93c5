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

package aerospike

import (
	"context"
	"fmt"
	"time"

	as "github.com/aerospike/aerospike-client-go/v7"

	"github.com/datazip-inc/aeroquery/constants"
	"github.com/datazip-inc/aeroquery/drivers/abstract"
	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/udf"
	"github.com/datazip-inc/aeroquery/utils/logger"
)

// Aerospike runs qualified queries against a cluster. Filter expressions are
// evaluated server side by the qualifiers module as a stream aggregation.
type Aerospike struct {
	config *Config
	client *as.Client
}

func New() *Aerospike {
	return &Aerospike{config: &Config{}}
}

// config reference; must be pointer
func (a *Aerospike) GetConfigRef() abstract.Config {
	return a.config
}

func (a *Aerospike) Type() string {
	return constants.AerospikeDriver
}

func (a *Aerospike) Setup(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}
	hosts, err := a.config.seeds()
	if err != nil {
		return err
	}

	err = abstract.RetryOnBackoff(ctx, a.config.RetryCount, time.Second, func() error {
		client, cerr := as.NewClientWithPolicyAndHost(a.config.clientPolicy(), hosts...)
		if cerr != nil {
			return cerr
		}
		a.client = client
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %v: %s", a.config.Hosts, err)
	}
	logger.Infof("connected to aerospike cluster %v", a.config.Hosts)

	if a.config.RegisterUDF {
		return a.registerModule(ctx)
	}
	return nil
}

func (a *Aerospike) registerModule(ctx context.Context) error {
	task, err := a.client.RegisterUDF(nil, udf.Module, udf.ModuleFile, as.LUA)
	if err != nil {
		return fmt.Errorf("failed to register %s: %s", udf.ModuleFile, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-task.OnComplete():
		if err != nil {
			return fmt.Errorf("failed to register %s: %s", udf.ModuleFile, err)
		}
	}
	logger.Infof("registered udf module %s", udf.ModuleFile)
	return nil
}

// Query runs the statement as an aggregation over select_records. An empty
// expression passes every row the filter yields.
func (a *Aerospike) Query(ctx context.Context, stmt *types.Statement, expression string) (abstract.RecordStream, error) {
	if a.client == nil {
		return nil, fmt.Errorf("aerospike client is not set up")
	}
	statement, err := toStatement(stmt)
	if err != nil {
		return nil, err
	}
	statement.SetAggregateFunction(udf.ModuleName, udf.SelectFunction, []as.Value{as.NewStringValue(expression)}, true)

	policy := as.NewQueryPolicy()
	policy.TotalTimeout = a.config.timeout()
	recordset, aerr := a.client.Query(policy, statement)
	if aerr != nil {
		return nil, aerr
	}

	release := func() error {
		// a nil client error must not become a non-nil error interface
		if err := recordset.Close(); err != nil {
			return err
		}
		return nil
	}
	return abstract.NewChannelStreamWithRelease(ctx, 0, produceRecords(stmt, recordset.Results()), release), nil
}

// produceRecords forwards aggregated rows. Rows the client yields without a
// record are skipped.
func produceRecords(stmt *types.Statement, results <-chan *as.Result) abstract.ProduceFn {
	return func(ctx context.Context, emit abstract.EmitFn) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case res, ok := <-results:
				if !ok {
					return nil
				}
				if res == nil {
					continue
				}
				if res.Err != nil {
					if !emit(&types.Result{Err: res.Err}) {
						return nil
					}
					continue
				}
				if res.Record == nil {
					continue
				}
				rec, err := toKeyRecord(stmt, res.Record)
				if !emit(&types.Result{Record: rec, Err: err}) {
					return nil
				}
			}
		}
	}
}

// Digest computes the server digest of a user key.
func (a *Aerospike) Digest(namespace, set string, key types.Value) ([]byte, error) {
	if key.Type() != types.ParticleInteger && key.Type() != types.ParticleString {
		return nil, fmt.Errorf("unsupported key type %s", key.Type())
	}
	asKey, err := as.NewKey(namespace, set, key.Interface())
	if err != nil {
		return nil, err
	}
	return asKey.Digest(), nil
}

// Indexes lists secondary indexes of a namespace from a random node.
func (a *Aerospike) Indexes(_ context.Context, namespace string) ([]types.Index, error) {
	if a.client == nil {
		return nil, fmt.Errorf("aerospike client is not set up")
	}
	node, err := a.client.Cluster().GetRandomNode()
	if err != nil {
		return nil, err
	}
	command := constants.SindexListCommand + namespace
	info, err := node.RequestInfo(as.NewInfoPolicy(), command)
	if err != nil {
		return nil, err
	}
	return types.ParseIndexList(info[command])
}

func (a *Aerospike) Close() error {
	if a.client != nil {
		a.client.Close()
	}
	return nil
}
