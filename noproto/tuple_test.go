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

func newTestTuple(t *testing.T, js string) (*Tuple, *arena.Arena) {
	t.Helper()
	s, err := schema.Parse([]byte(js))
	require.NoError(t, err)
	a, err := arena.New(arena.Width4, nil)
	require.NoError(t, err)
	headAddr, err := a.Malloc(make([]byte, len(s.Root().Values)*int(a.Width())))
	require.NoError(t, err)
	return &Tuple{a: a, s: s, node: s.Root(), head: headAddr}, a
}

func TestTupleOutOfRangeIndexErrors(t *testing.T) {
	tup, _ := newTestTuple(t, `{"type":"tuple","values":[{"type":"int32"},{"type":"int32"}]}`)
	_, err := tup.Select(5)
	var npErr *Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, KindOutOfBounds, npErr.Kind)
}

func TestTupleSortKeyRejectsUnsortedTuple(t *testing.T) {
	tup, _ := newTestTuple(t, `{"type":"tuple","values":[{"type":"int32"}]}`)
	_, err := tup.SortKey([]any{int64(1)})
	var npErr *Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, KindTypeMismatch, npErr.Kind)
}

func TestTupleSortKeyConcatenatesChildSortKeysInOrder(t *testing.T) {
	tup, _ := newTestTuple(t, `{"type":"tuple","sorted":true,"values":[
		{"type":"int32","sortable":true},
		{"type":"int32","sortable":true}
	]}`)

	low, err := tup.SortKey([]any{int64(-1), int64(100)})
	require.NoError(t, err)
	high, err := tup.SortKey([]any{int64(-1), int64(200)})
	require.NoError(t, err)
	require.Less(t, string(low), string(high))

	// The first component dominates ordering, same as a composite index key.
	firstLower, err := tup.SortKey([]any{int64(-5), int64(1000)})
	require.NoError(t, err)
	require.Less(t, string(firstLower), string(low))
}

func TestTupleSortKeyRejectsWrongArity(t *testing.T) {
	tup, _ := newTestTuple(t, `{"type":"tuple","sorted":true,"values":[
		{"type":"int32","sortable":true},
		{"type":"int32","sortable":true}
	]}`)
	_, err := tup.SortKey([]any{int64(1)})
	var npErr *Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, KindTypeMismatch, npErr.Kind)
}
