// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/noproto/arena"
)

func TestMallocReturnsStartAddress(t *testing.T) {
	a, err := arena.New(arena.Width2, nil)
	require.NoError(t, err)

	addr1, err := a.Malloc([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, arena.Address(0), addr1)

	addr2, err := a.Malloc([]byte{4, 5})
	require.NoError(t, err)
	require.Equal(t, arena.Address(3), addr2)

	require.Equal(t, 5, a.Len())
}

func TestMallocBorrowCopies(t *testing.T) {
	a, err := arena.New(arena.Width1, nil)
	require.NoError(t, err)

	data := []byte{9, 9}
	addr, err := a.MallocBorrow(data)
	require.NoError(t, err)
	data[0] = 0xFF

	raw, ok := a.GetNBytes(addr, 1)
	require.True(t, ok)
	require.Equal(t, byte(9), raw[0])
}

func TestSetAndReadAddressRoundTrip(t *testing.T) {
	a, err := arena.New(arena.Width4, nil)
	require.NoError(t, err)

	_, err = a.Malloc(make([]byte, 4)) // slot
	require.NoError(t, err)
	_, err = a.Malloc([]byte{1, 2, 3, 4}) // value

	require.NoError(t, err)
	require.NoError(t, a.SetValueAddress(0, 4))

	got, err := a.ReadAddress(0)
	require.NoError(t, err)
	require.Equal(t, arena.Address(4), got)
}

func TestMallocCapacityExceeded(t *testing.T) {
	a, err := arena.New(arena.Width1, nil)
	require.NoError(t, err)

	_, err = a.Malloc(make([]byte, 255))
	require.NoError(t, err)

	_, err = a.Malloc([]byte{1})
	require.ErrorIs(t, err, arena.ErrCapacityExceeded)
}

func TestGetNBytesPastEndIsNotOK(t *testing.T) {
	a, err := arena.New(arena.Width1, nil)
	require.NoError(t, err)
	_, err = a.Malloc([]byte{1, 2})
	require.NoError(t, err)

	_, ok := a.GetNBytes(1, 2)
	require.False(t, ok)
}

func TestWidthMax(t *testing.T) {
	require.Equal(t, uint64(255), arena.Width1.Max())
	require.Equal(t, uint64(65535), arena.Width2.Max())
	require.Equal(t, uint64(4294967295), arena.Width4.Max())
}
