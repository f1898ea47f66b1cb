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

func newTestList(t *testing.T) (*List, *arena.Arena) {
	t.Helper()
	s, err := schema.Parse([]byte(`{"type":"list","of":{"type":"uint32"}}`))
	require.NoError(t, err)
	a, err := arena.New(arena.Width4, nil)
	require.NoError(t, err)
	headAddr, err := a.Malloc(make([]byte, 3*int(a.Width())))
	require.NoError(t, err)
	return &List{a: a, s: s, node: s.Root(), head: headAddr}, a
}

func TestListSelectMissingIsVirtual(t *testing.T) {
	l, _ := newTestList(t)
	cur, err := l.Select(0)
	require.NoError(t, err)
	require.True(t, cur.Virtual)
	require.True(t, cur.IsAbsent())
}

func TestListCommitVirtualThenSelectFindsIt(t *testing.T) {
	l, a := newTestList(t)
	cur, err := l.Select(2)
	require.NoError(t, err)
	require.NoError(t, l.CommitVirtual(cur))
	require.False(t, cur.Virtual)

	require.NoError(t, a.SetValueAddress(cur.SlotAddr, arena.Address(99)))

	again, err := l.Select(2)
	require.NoError(t, err)
	require.False(t, again.Virtual)
	require.Equal(t, arena.Address(99), again.ValueAddr)

	_, _, length, err := l.readHead()
	require.NoError(t, err)
	require.Equal(t, 1, length)
}

func TestListDeleteUnlinksMiddleNode(t *testing.T) {
	l, _ := newTestList(t)
	for _, idx := range []int{0, 1, 2} {
		cur, err := l.Select(idx)
		require.NoError(t, err)
		require.NoError(t, l.CommitVirtual(cur))
	}

	require.NoError(t, l.Delete(1))

	var seen []int
	require.NoError(t, l.Iterate(func(key any, cur *Cursor) error {
		seen = append(seen, key.(int))
		return nil
	}))
	require.Equal(t, []int{0, 2}, seen)

	_, _, length, err := l.readHead()
	require.NoError(t, err)
	require.Equal(t, 2, length)
}

func TestListIterateVisitsAscendingIndexOrder(t *testing.T) {
	l, _ := newTestList(t)
	for _, idx := range []int{5, 1, 3} {
		cur, err := l.Select(idx)
		require.NoError(t, err)
		require.NoError(t, l.CommitVirtual(cur))
	}

	var seen []int
	require.NoError(t, l.Iterate(func(key any, cur *Cursor) error {
		seen = append(seen, key.(int))
		return nil
	}))
	require.Equal(t, []int{1, 3, 5}, seen)
}

func TestListIndexOutOfRangeErrors(t *testing.T) {
	l, _ := newTestList(t)
	_, err := l.Select(70000)
	var npErr *Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, KindOutOfBounds, npErr.Kind)
}
