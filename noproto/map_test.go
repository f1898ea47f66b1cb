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

func newTestMap(t *testing.T) (*Map, *arena.Arena) {
	t.Helper()
	s, err := schema.Parse([]byte(`{"type":"map","value":{"type":"uint32"}}`))
	require.NoError(t, err)
	a, err := arena.New(arena.Width4, nil)
	require.NoError(t, err)
	headAddr, err := a.Malloc(make([]byte, 2*int(a.Width())))
	require.NoError(t, err)
	return &Map{a: a, s: s, node: s.Root(), head: headAddr}, a
}

func TestMapSelectMissingKeyIsVirtual(t *testing.T) {
	m, _ := newTestMap(t)
	cur, err := m.Select("a")
	require.NoError(t, err)
	require.True(t, cur.Virtual)
}

func TestMapCommitVirtualAppendsAtTail(t *testing.T) {
	m, _ := newTestMap(t)
	for _, k := range []string{"a", "b", "c"} {
		cur, err := m.Select(k)
		require.NoError(t, err)
		require.NoError(t, m.CommitVirtual(cur))
	}

	var order []string
	require.NoError(t, m.Iterate(func(key any, cur *Cursor) error {
		order = append(order, key.(string))
		return nil
	}))
	require.Equal(t, []string{"a", "b", "c"}, order)

	_, length, err := m.readHead()
	require.NoError(t, err)
	require.Equal(t, 3, length)
}

func TestMapDeleteMissingKeyIsNoOp(t *testing.T) {
	m, _ := newTestMap(t)
	require.NoError(t, m.Delete("nope"))
}

func TestMapDeleteThenIterateSkipsRemovedKey(t *testing.T) {
	m, _ := newTestMap(t)
	for _, k := range []string{"x", "y", "z"} {
		cur, err := m.Select(k)
		require.NoError(t, err)
		require.NoError(t, m.CommitVirtual(cur))
	}
	require.NoError(t, m.Delete("y"))

	var order []string
	require.NoError(t, m.Iterate(func(key any, cur *Cursor) error {
		order = append(order, key.(string))
		return nil
	}))
	require.Equal(t, []string{"x", "z"}, order)

	again, err := m.Select("y")
	require.NoError(t, err)
	require.True(t, again.Virtual)
}
