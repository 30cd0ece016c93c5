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
	"strings"
)

type IndexType string

const (
	IndexString      IndexType = "STRING"
	IndexNumeric     IndexType = "NUMERIC"
	IndexGeo2DSphere IndexType = "GEO2DSPHERE"
	// IndexUnknown is a type this client does not know; it serves no filter.
	IndexUnknown IndexType = "UNKNOWN"
)

// Index is one secondary index as reported by the server.
type Index struct {
	Namespace  string            `json:"ns"`
	Set        string            `json:"set,omitempty"`
	Name       string            `json:"indexname"`
	Bin        string            `json:"bin"`
	Type       IndexType         `json:"type"`
	Collection CollectionContext `json:"indextype"`
	State      string            `json:"state,omitempty"`
}

// ParseIndexInfo parses one entry of a sindex-list info response, e.g.
// ns=test:set=users:indexname=idx_age:bin=age:type=NUMERIC:indextype=DEFAULT:state=RW
func ParseIndexInfo(info string) (Index, error) {
	info = strings.TrimSpace(info)
	if info == "" {
		return Index{}, fmt.Errorf("empty index info")
	}

	idx := Index{}
	for _, pair := range strings.Split(info, ":") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch strings.ToLower(key) {
		case "ns":
			idx.Namespace = value
		case "set":
			if value != "NULL" {
				idx.Set = value
			}
		case "indexname":
			idx.Name = value
		case "bin", "bins":
			idx.Bin = value
		case "type":
			idx.Type = parseIndexType(value)
		case "indextype":
			ctx, err := ParseCollectionContext(value)
			if err != nil {
				return Index{}, fmt.Errorf("failed to parse index %s: %s", info, err)
			}
			idx.Collection = ctx
		case "state":
			idx.State = value
		}
	}

	if idx.Name == "" || idx.Bin == "" {
		return Index{}, fmt.Errorf("index info missing name or bin: %s", info)
	}
	return idx, nil
}

// ParseIndexList parses a ';'-separated sindex-list response.
func ParseIndexList(response string) ([]Index, error) {
	var indexes []Index
	for _, entry := range strings.Split(response, ";") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		idx, err := ParseIndexInfo(entry)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

func parseIndexType(value string) IndexType {
	switch strings.ToUpper(value) {
	case "TEXT", "STRING":
		return IndexString
	case "NUMERIC", "INT SIGNED":
		return IndexNumeric
	case "GEO2DSPHERE", "GEOJSON":
		return IndexGeo2DSphere
	default:
		return IndexUnknown
	}
}

// Supports reports whether the index can serve the filter.
func (i Index) Supports(f *IndexFilter) bool {
	if f == nil || i.Type == IndexUnknown {
		return false
	}
	return i.Bin == f.Bin && i.Collection == f.Collection && i.Type == f.IndexType()
}

func (i Index) String() string {
	return fmt.Sprintf("%s.%s/%s(%s %s %s)", i.Namespace, i.Set, i.Name, i.Bin, i.Type, i.Collection)
}
