// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/noproto/schema"
)

func TestParseScalar(t *testing.T) {
	s, err := schema.Parse([]byte(`{"type":"int32","default":7}`))
	require.NoError(t, err)
	require.Equal(t, schema.KindInt, s.Root().Kind)
	require.EqualValues(t, 4, s.Root().IntWidth)
	require.Equal(t, int64(7), s.Root().Default)
}

func TestParseDecimalDefault(t *testing.T) {
	// Seed scenario E4.
	s, err := schema.Parse([]byte(`{"type":"decimal","exp":3,"default":203.293}`))
	require.NoError(t, err)
	require.Equal(t, schema.Decimal{Num: 203293, Exp: 3}, s.Root().Default)
}

func TestDecimalCmpRescalesToLargerExp(t *testing.T) {
	// Seed scenario E6.
	a := schema.Decimal{Num: 20201, Exp: 2}
	b := schema.Decimal{Num: 2020100, Exp: 4}
	require.Equal(t, 0, a.Cmp(b))
	require.Equal(t, b, a.Rescale(4))
}

func TestDecimalCmpOrdersByNumericValue(t *testing.T) {
	small := schema.Decimal{Num: 100, Exp: 2}  // 1.00
	large := schema.Decimal{Num: 15000, Exp: 4} // 1.5000
	require.Equal(t, -1, small.Cmp(large))
	require.Equal(t, 1, large.Cmp(small))
}

func TestParseULIDDefaultAcceptsCrockfordString(t *testing.T) {
	s, err := schema.Parse([]byte(`{"type":"ulid","default":"01ARZ3NDEKTSV4RRFFQ69G5FAV"}`))
	require.NoError(t, err)
	want, err := ulid.ParseStrict("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	require.Equal(t, want, s.Root().Default)
}

func TestParseTableRejectsDuplicateColumns(t *testing.T) {
	_, err := schema.Parse([]byte(`{
		"type":"table",
		"columns":[["a",{"type":"bool"}],["a",{"type":"int8"}]]
	}`))
	require.Error(t, err)
	var invalid *schema.InvalidError
	require.ErrorAs(t, err, &invalid)
}

func TestParseSortedTupleRequiresSortableChildren(t *testing.T) {
	_, err := schema.Parse([]byte(`{
		"type":"tuple",
		"sorted":true,
		"values":[{"type":"int8"},{"type":"bytes"}]
	}`))
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	original := []byte(`{"type":"table","columns":[["id",{"type":"uint64"}],["name",{"type":"string","size":40}]]}`)
	s, err := schema.Parse(original)
	require.NoError(t, err)

	emitted, err := s.ToJSON()
	require.NoError(t, err)

	s2, err := schema.Parse(emitted)
	require.NoError(t, err)

	if diff := cmp.Diff(s, s2); diff != "" {
		t.Fatalf("schema not structurally equivalent after JSON round trip (-want +got):\n%s", diff)
	}
}

func TestCompactBytesRoundTrip(t *testing.T) {
	s, err := schema.Parse([]byte(`{
		"type":"list",
		"of": {"type":"tuple","sorted":true,"values":[{"type":"int16"},{"type":"uuid"}]}
	}`))
	require.NoError(t, err)

	b, err := s.ToBytes()
	require.NoError(t, err)

	s2, err := schema.ParseBytes(b)
	require.NoError(t, err)

	if diff := cmp.Diff(s, s2); diff != "" {
		t.Fatalf("schema not structurally equivalent after byte round trip (-want +got):\n%s", diff)
	}
}

func TestTooManyColumnsRejected(t *testing.T) {
	s := &schema.Schema{Nodes: []schema.Node{{Kind: schema.KindTable}}}
	for i := 0; i < 256; i++ {
		s.Nodes[0].Columns = append(s.Nodes[0].Columns, schema.Column{Name: "c", Child: 0})
	}
	err := schema.Validate(s)
	require.Error(t, err)
}
