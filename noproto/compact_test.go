// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/noproto"
)

func TestCompactDropsDeletedGarbage(t *testing.T) {
	s := mustSchema(t, `{"type":"table","columns":[
		["a",{"type":"bytes"}],
		["b",{"type":"string"}]
	]}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set([]byte("some reasonably long garbage payload"), "a"))
	require.NoError(t, buf.Set("kept", "b"))
	require.NoError(t, buf.Del("a"))

	before := buf.CalcBytes()
	require.NoError(t, buf.Compact(arena.Width4))
	after := buf.CalcBytes()
	require.Less(t, after, before)

	a, err := buf.Get("a")
	require.NoError(t, err)
	require.Nil(t, a)

	b, err := buf.Get("b")
	require.NoError(t, err)
	require.Equal(t, "kept", b)
}

func TestCompactPreservesListOrderAndNestedTables(t *testing.T) {
	s := mustSchema(t, `{"type":"list","of":{"type":"table","columns":[
		["n",{"type":"int32"}]
	]}}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set(int64(1), 0, "n"))
	require.NoError(t, buf.Set(int64(2), 1, "n"))
	require.NoError(t, buf.Set(int64(3), 2, "n"))

	require.NoError(t, buf.Compact(arena.Width4))

	for i, want := range []int64{1, 2, 3} {
		got, err := buf.Get(i, "n")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
