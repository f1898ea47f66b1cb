// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/noproto"
	"github.com/solidcoredata/noproto/schema"
)

func TestSignedIntSortKeyOrdersNegativeBeforePositive(t *testing.T) {
	s := mustSchema(t, `{"type":"int32"}`)
	codec, ok := noproto.CodecFor(s.Root().Kind)
	require.True(t, ok)

	neg, err := codec.SortKey(s.Root(), int64(-5))
	require.NoError(t, err)
	pos, err := codec.SortKey(s.Root(), int64(5))
	require.NoError(t, err)
	require.Less(t, string(neg), string(pos))
}

func TestUnsignedIntRoundTripsAsUint64(t *testing.T) {
	s := mustSchema(t, `{"type":"uint16"}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)
	require.NoError(t, buf.Set(int64(500)))
	got, err := buf.Get()
	require.NoError(t, err)
	// Unsigned widths round-trip as the unsigned Go type, not int64.
	require.Equal(t, uint64(500), got)
}

func TestUUIDRoundTrip(t *testing.T) {
	s := mustSchema(t, `{"type":"uuid"}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, buf.Set(id))
	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestBytesVariableOverwriteReuseVsGrow(t *testing.T) {
	s := mustSchema(t, `{"type":"bytes"}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set([]byte("hello world")))
	sizeAfterFirst := buf.CalcBytes()

	// Shrinking reuses the existing allocation: total size is unchanged.
	require.NoError(t, buf.Set([]byte("hi")))
	require.Equal(t, sizeAfterFirst, buf.CalcBytes())
	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), got)

	// Growing past the original length appends a fresh prefix+data pair.
	require.NoError(t, buf.Set([]byte("this is much longer than before")))
	require.Greater(t, buf.CalcBytes(), sizeAfterFirst)
	got, err = buf.Get()
	require.NoError(t, err)
	require.Equal(t, []byte("this is much longer than before"), got)
}

func TestOptionRoundTrip(t *testing.T) {
	s := mustSchema(t, `{"type":"option","choices":["red","green","blue"]}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set("green"))
	got, err := buf.Get()
	require.NoError(t, err)
	require.Equal(t, "green", got)
}

func TestGeoRoundTrip(t *testing.T) {
	s := mustSchema(t, `{"type":"geo8"}`)
	buf, err := noproto.NewBuffer(s, arena.Width4, nil)
	require.NoError(t, err)

	require.NoError(t, buf.Set(schema.GeoPoint{Lat: 40.7128, Lon: -74.0060}))
	got, err := buf.Get()
	require.NoError(t, err)
	pt, ok := got.(schema.GeoPoint)
	require.True(t, ok)
	require.InDelta(t, 40.7128, pt.Lat, 1e-6)
	require.InDelta(t, -74.0060, pt.Lon, 1e-6)
}
