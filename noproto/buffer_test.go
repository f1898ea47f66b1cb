// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/noproto"
	"github.com/solidcoredata/noproto/schema"
)

func mustSchema(t *testing.T, js string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(js))
	require.NoError(t, err)
	return s
}

// E1: a bytes-default root on an empty buffer reads back the default.
func TestSeedE1_DefaultAppliesOnEmptyRoot(t *testing.T) {
	s := mustSchema(t, `{"type":"bytes","default":[22,208,10,78,1,19,85]}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, []byte{22, 208, 10, 78, 1, 19, 85}, got)
}

// E2: a fixed-size bytes root truncates an overlong write.
func TestSeedE2_FixedBytesTruncates(t *testing.T) {
	s := mustSchema(t, `{"type":"bytes","size":20}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	in := make([]byte, 22)
	for i := range in {
		in[i] = byte(i + 1)
	}
	require.NoError(t, buf.Set(in))

	got, err := buf.Get()
	require.NoError(t, err)
	want := make([]byte, 20)
	for i := range want {
		want[i] = byte(i + 1)
	}
	require.Equal(t, want, got)
}

// E3: delete then compact a variable bytes root back to just the
// preamble (4 bytes at address width 4).
func TestSeedE3_DeleteThenCompactIsTight(t *testing.T) {
	s := mustSchema(t, `{"type":"bytes"}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	in := make([]byte, 13)
	for i := range in {
		in[i] = byte(i + 1)
	}
	require.NoError(t, buf.Set(in))
	require.NoError(t, buf.Del())

	got, err := buf.Get()
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, buf.Compact(arena.Width4))
	require.Equal(t, 4, buf.CalcBytes())
}

// E4: a decimal default renders to its fixed-point mantissa at the
// schema's declared exponent.
func TestSeedE4_DecimalDefaultMantissa(t *testing.T) {
	s := mustSchema(t, `{"type":"decimal","exp":3,"default":203.293}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, schema.Decimal{Num: 203293, Exp: 3}, got)
}

// E5: set/get/delete/compact round trip for a decimal root.
func TestSeedE5_DecimalSetGetDeleteCompact(t *testing.T) {
	s := mustSchema(t, `{"type":"decimal","exp":3}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set(schema.Decimal{Num: 203293, Exp: 3}))
	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, schema.Decimal{Num: 203293, Exp: 3}, got)

	require.NoError(t, buf.Del())
	got, err = buf.Get()
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, buf.Compact(arena.Width4))
	require.Equal(t, 4, buf.CalcBytes())
}

// E6: a decimal written at a smaller exponent is rescaled up to the
// schema's exponent, so {20201, exp 2} reads back as {2020100, exp 4}.
func TestSeedE6_DecimalRescaleEquivalence(t *testing.T) {
	s := mustSchema(t, `{"type":"decimal","exp":4}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set(schema.Decimal{Num: 20201, Exp: 2}))
	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, schema.Decimal{Num: 2020100, Exp: 4}, got)
}

func TestTablePathWriteReadDelete(t *testing.T) {
	s := mustSchema(t, `{"type":"table","columns":[
		["name",{"type":"string"}],
		["age",{"type":"uint8"}]
	]}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set("Ada", "name"))
	require.NoError(t, buf.Set(int64(30), "age"))

	name, err := buf.Get("name")
	require.NoError(t, err)
	require.Equal(t, "Ada", name)

	age, err := buf.Get("age")
	require.NoError(t, err)
	require.Equal(t, uint64(30), age)

	require.NoError(t, buf.Del("name"))
	name, err = buf.Get("name")
	require.NoError(t, err)
	require.Nil(t, name)

	_, err = buf.Get("nope")
	var npErr *noproto.Error
	require.ErrorAs(t, err, &npErr)
	require.Equal(t, noproto.KindUnknownField, npErr.Kind)
}

func TestListSparseSetAndGet(t *testing.T) {
	s := mustSchema(t, `{"type":"list","of":{"type":"uint32"}}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set(int64(100), 5))
	require.NoError(t, buf.Set(int64(10), 1))
	require.NoError(t, buf.Set(int64(30), 3))

	v1, err := buf.Get(1)
	require.NoError(t, err)
	require.Equal(t, uint64(10), v1)

	v5, err := buf.Get(5)
	require.NoError(t, err)
	require.Equal(t, uint64(100), v5)

	missing, err := buf.Get(2)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMapSetGetDelete(t *testing.T) {
	s := mustSchema(t, `{"type":"map","value":{"type":"string"}}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set("one", "a"))
	require.NoError(t, buf.Set("two", "b"))
	require.NoError(t, buf.Set("three", "c"))

	b, err := buf.Get("b")
	require.NoError(t, err)
	require.Equal(t, "two", b)

	require.NoError(t, buf.Del("b"))
	_, err = buf.Get("b")
	require.NoError(t, err)
}

func TestNestedTableInsideList(t *testing.T) {
	s := mustSchema(t, `{"type":"list","of":{"type":"table","columns":[
		["x",{"type":"int32"}],
		["y",{"type":"int32"}]
	]}}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set(int64(7), 0, "x"))
	require.NoError(t, buf.Set(int64(9), 0, "y"))

	x, err := buf.Get(0, "x")
	require.NoError(t, err)
	require.Equal(t, int64(7), x)

	y, err := buf.Get(0, "y")
	require.NoError(t, err)
	require.Equal(t, int64(9), y)
}
