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
	_ "embed"
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/datazip-inc/aeroquery/types"
	"github.com/datazip-inc/aeroquery/udf"
)

//go:embed shim.lua
var shim string

// luaFilter evaluates one filter expression with the same qualifiers module
// the server runs. It owns a Lua state and is not safe for concurrent use.
type luaFilter struct {
	state     *lua.LState
	predicate lua.LValue
	listMeta  lua.LValue
	mapMeta   lua.LValue
}

func newLuaFilter(expression string) (*luaFilter, error) {
	state := lua.NewState()
	if err := state.DoString(shim); err != nil {
		state.Close()
		return nil, fmt.Errorf("failed to load record shim: %s", err)
	}
	if err := state.DoString(string(udf.Module)); err != nil {
		state.Close()
		return nil, fmt.Errorf("failed to load %s: %s", udf.ModuleFile, err)
	}

	compile := state.GetGlobal(udf.FilterFunction)
	if err := state.CallByParam(lua.P{Fn: compile, NRet: 1, Protect: true}, lua.LString(expression)); err != nil {
		state.Close()
		return nil, fmt.Errorf("failed to compile filter expression: %s", err)
	}
	predicate := state.Get(-1)
	state.Pop(1)

	return &luaFilter{
		state:     state,
		predicate: predicate,
		listMeta:  state.GetGlobal("__list_mt"),
		mapMeta:   state.GetGlobal("__map_mt"),
	}, nil
}

// Match runs the predicate on rec. Errors raised by the expression reject the
// row; only failures of the Lua state itself are returned.
func (f *luaFilter) Match(ctx context.Context, rec *types.KeyRecord) (bool, error) {
	f.state.SetContext(ctx)
	if err := f.state.CallByParam(lua.P{Fn: f.predicate, NRet: 1, Protect: true}, f.record(rec)); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("failed to evaluate filter: %s", err)
	}
	result := f.state.Get(-1)
	f.state.Pop(1)
	return result == lua.LTrue, nil
}

func (f *luaFilter) Close() error {
	f.state.Close()
	return nil
}

func (f *luaFilter) record(rec *types.KeyRecord) *lua.LTable {
	table := f.state.NewTable()
	for name, value := range rec.Bins {
		table.RawSetString(name, f.value(value))
	}

	meta := f.state.NewTable()
	meta.RawSetString("__gen", lua.LNumber(rec.Generation))
	meta.RawSetString("__ttl", lua.LNumber(rec.Expiration))
	if rec.Key != nil && len(rec.Key.Digest) > 0 {
		meta.RawSetString("__digest", lua.LString(rec.Key.Digest))
	}
	f.state.SetMetatable(table, meta)
	return table
}

// value converts a bin value to its Lua form: numbers to numbers, lists and
// maps to tables tagged with the shim metatables, GeoJSON to userdata.
func (f *luaFilter) value(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int64:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case types.GeoJSON:
		ud := f.state.NewUserData()
		ud.Value = val
		return ud
	case []any:
		table := f.state.NewTable()
		for idx, item := range val {
			table.RawSetInt(idx+1, f.value(item))
		}
		f.state.SetMetatable(table, f.listMeta)
		return table
	case map[any]any:
		table := f.state.NewTable()
		for key, item := range val {
			f.setEntry(table, f.value(key), f.value(item))
		}
		f.state.SetMetatable(table, f.mapMeta)
		return table
	case map[string]any:
		table := f.state.NewTable()
		for key, item := range val {
			f.setEntry(table, lua.LString(key), f.value(item))
		}
		f.state.SetMetatable(table, f.mapMeta)
		return table
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

func (f *luaFilter) setEntry(table *lua.LTable, key, value lua.LValue) {
	if key == lua.LNil {
		return
	}
	if n, ok := key.(lua.LNumber); ok && math.IsNaN(float64(n)) {
		return
	}
	table.RawSet(key, value)
}
