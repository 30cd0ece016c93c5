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
	"fmt"

	as "github.com/aerospike/aerospike-client-go/v7"

	"github.com/datazip-inc/aeroquery/constants"
	"github.com/datazip-inc/aeroquery/types"
)

func collectionType(ctx types.CollectionContext) as.IndexCollectionType {
	switch ctx {
	case types.ListElements:
		return as.ICT_LIST
	case types.MapKeys:
		return as.ICT_MAPKEYS
	case types.MapValues:
		return as.ICT_MAPVALUES
	default:
		return as.ICT_DEFAULT
	}
}

// toFilter builds the client filter for an index lookup.
func toFilter(f *types.IndexFilter) (*as.Filter, error) {
	if f == nil {
		return nil, nil
	}
	ict := collectionType(f.Collection)
	scalar := f.Collection == types.Scalar

	switch f.Kind {
	case types.FilterEqual:
		return as.NewEqualFilter(f.Bin, f.Value.Interface()), nil
	case types.FilterContains:
		return as.NewContainsFilter(f.Bin, ict, f.Value.Interface()), nil
	case types.FilterRange:
		if scalar {
			return as.NewRangeFilter(f.Bin, f.Begin, f.End), nil
		}
		return as.NewContainsRangeFilter(f.Bin, ict, f.Begin, f.End), nil
	case types.FilterGeoWithinRegion:
		if scalar {
			return as.NewGeoWithinRegionFilter(f.Bin, f.GeoJSON), nil
		}
		return as.NewGeoWithinRegionForCollectionFilter(f.Bin, ict, f.GeoJSON), nil
	case types.FilterGeoWithinRadius:
		if scalar {
			return as.NewGeoWithinRadiusFilter(f.Bin, f.Longitude, f.Latitude, f.Radius), nil
		}
		return as.NewGeoWithinRadiusForCollectionFilter(f.Bin, ict, f.Longitude, f.Latitude, f.Radius), nil
	case types.FilterGeoContainsPoint:
		if scalar {
			return as.NewGeoRegionsContainingPointFilter(f.Bin, f.GeoJSON), nil
		}
		return as.NewGeoRegionsContainingPointForCollectionFilter(f.Bin, ict, f.GeoJSON), nil
	default:
		return nil, fmt.Errorf("unsupported index filter kind %s", f.Kind)
	}
}

func toStatement(stmt *types.Statement) (*as.Statement, error) {
	statement := as.NewStatement(stmt.Namespace, stmt.SetName, stmt.BinNames...)
	filter, err := toFilter(stmt.Filter)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		if err := statement.SetFilter(filter); err != nil {
			return nil, err
		}
	}
	return statement, nil
}

// toKeyRecord unpacks one aggregated row. The module returns a map with the
// record's bins, generation, ttl and digest.
func toKeyRecord(stmt *types.Statement, rec *as.Record) (*types.KeyRecord, error) {
	if rec == nil {
		return nil, fmt.Errorf("aggregate result without a record")
	}
	raw, ok := rec.Bins[constants.AggregateResultBin]
	if !ok {
		return nil, fmt.Errorf("aggregate result without %s bin", constants.AggregateResultBin)
	}
	row, ok := raw.(map[any]any)
	if !ok {
		return nil, fmt.Errorf("unexpected aggregate result of type %T", raw)
	}

	out := &types.KeyRecord{
		Key:  &types.Key{Namespace: stmt.Namespace, SetName: stmt.SetName},
		Bins: map[string]any{},
	}
	if digest, ok := row["digest"].([]byte); ok {
		out.Key.Digest = digest
	}
	if generation, ok := row["generation"].(int); ok {
		out.Generation = uint32(generation) //nolint:gosec
	}
	if ttl, ok := row["ttl"].(int); ok {
		out.Expiration = uint32(ttl) //nolint:gosec
	}
	if bins, ok := row["bins"].(map[any]any); ok {
		for name, value := range bins {
			key, ok := name.(string)
			if !ok {
				continue
			}
			if value = fromClient(value); value != nil {
				out.Bins[key] = value
			}
		}
	}
	return out, nil
}

// fromClient maps client values onto bin value shapes.
func fromClient(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case as.GeoJSONValue:
		return types.GeoJSON(val)
	case []any:
		out := make([]any, len(val))
		for idx, item := range val {
			out[idx] = fromClient(item)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(val))
		for key, item := range val {
			out[fromClient(key)] = fromClient(item)
		}
		return out
	default:
		return val
	}
}
