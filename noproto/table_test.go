// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

func newTestTable(t *testing.T, js string) (*Table, *arena.Arena) {
	t.Helper()
	s, err := schema.Parse([]byte(js))
	require.NoError(t, err)
	a, err := arena.New(arena.Width4, nil)
	require.NoError(t, err)
	headAddr, err := a.Malloc(make([]byte, len(s.Root().Columns)*int(a.Width())))
	require.NoError(t, err)
	return &Table{a: a, s: s, node: s.Root(), head: headAddr}, a
}

func TestTableUnknownColumnErrors(t *testing.T) {
	tbl, _ := newTestTable(t, `{"type":"table","columns":[["id",{"type":"int32"}]]}`)
	_, err := tbl.Select("missing")
	var npErr *Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, KindUnknownField, npErr.Kind)
}

func TestTableSelectWrongKeyTypeErrors(t *testing.T) {
	tbl, _ := newTestTable(t, `{"type":"table","columns":[["id",{"type":"int32"}]]}`)
	_, err := tbl.Select(0)
	var npErr *Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, KindTypeMismatch, npErr.Kind)
}

func TestTableIterateSkipsAbsentColumnsWithoutDefault(t *testing.T) {
	tbl, a := newTestTable(t, `{"type":"table","columns":[
		["a",{"type":"int32"}],
		["b",{"type":"int32","default":7}]
	]}`)

	var seen []string
	require.NoError(t, tbl.Iterate(func(key any, cur *Cursor) error {
		seen = append(seen, key.(string))
		return nil
	}))
	// "a" has no default and no value yet: skipped. "b" has a default: visited.
	require.Equal(t, []string{"b"}, seen)

	cur, err := tbl.Select("a")
	require.NoError(t, err)
	require.NoError(t, a.SetValueAddress(cur.SlotAddr, arena.Address(123)))

	seen = nil
	require.NoError(t, tbl.Iterate(func(key any, cur *Cursor) error {
		seen = append(seen, key.(string))
		return nil
	}))
	require.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestTableDeleteClearsSlot(t *testing.T) {
	tbl, a := newTestTable(t, `{"type":"table","columns":[["id",{"type":"int32"}]]}`)
	cur, err := tbl.Select("id")
	require.NoError(t, err)
	require.NoError(t, a.SetValueAddress(cur.SlotAddr, arena.Address(42)))

	require.NoError(t, tbl.Delete("id"))

	again, err := tbl.Select("id")
	require.NoError(t, err)
	require.Equal(t, arena.NoAddress, again.ValueAddr)
}
