// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecBytes implements both the fixed-size and variable-length byte
// string scalar (spec.md §4.2). Fixed (node.Size > 0) always occupies
// exactly node.Size bytes in place, right-padded or truncated. Variable
// (node.Size == 0) is a W-byte big-endian length prefix followed by the
// data; an overwrite reuses the existing allocation when the new
// length fits inside the old one, and otherwise appends a fresh
// prefix+data pair at the tail — two back-to-back appends (Malloc for
// the prefix, then MallocBorrow for the data), the split the spec's
// Open Question resolves in favor of (original_source/src/pointer/
// bytes.rs does the same truncate-or-reallocate split).
type codecBytes struct{}

func (codecBytes) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	data, err := toBytes(value)
	if err != nil {
		return err
	}
	if node.Size > 0 {
		return setFixed(a, cur, padOrTruncate(data, int(node.Size)))
	}
	return setVarBytes(a, cur, data)
}

func (codecBytes) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	if node.Size > 0 {
		raw, err := readFixed(a, cur, int(node.Size))
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	return getVarBytes(a, cur)
}

func (codecBytes) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	if node.Size > 0 {
		return int(node.Size), nil
	}
	length, err := a.ReadAddress(cur.ValueAddr)
	if err != nil {
		return 0, asArenaErr(err)
	}
	return int(a.Width()) + int(length), nil
}

func (codecBytes) SortKey(node *schema.Node, value any) ([]byte, error) {
	data, err := toBytes(value)
	if err != nil {
		return nil, err
	}
	if node.Size > 0 {
		return padOrTruncate(data, int(node.Size)), nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, newErr(KindTypeMismatch, "expected []byte, got %T", value)
	}
}

func padOrTruncate(data []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, data)
	return out
}

// setVarBytes implements the variable-length overwrite policy: reuse
// the existing prefix+data region in place when data fits within the
// previous length, otherwise allocate a fresh contiguous prefix+data
// pair at the tail.
func setVarBytes(a *arena.Arena, cur *Cursor, data []byte) error {
	w := int(a.Width())
	if uint64(len(data)) > a.Width().Max() {
		return newErr(KindTooLarge, "value of %d bytes exceeds address width capacity", len(data))
	}
	if cur.ValueAddr != arena.NoAddress {
		oldLen, err := a.ReadAddress(cur.ValueAddr)
		if err != nil {
			return asArenaErr(err)
		}
		if uint64(len(data)) <= uint64(oldLen) {
			if err := a.SetValueAddress(cur.ValueAddr, arena.Address(len(data))); err != nil {
				return asArenaErr(err)
			}
			dataAddr := cur.ValueAddr + arena.Address(w)
			buf := a.WriteBytes()
			end := uint64(dataAddr) + uint64(len(data))
			if end > uint64(len(buf)) {
				return newErr(KindCorruption, "data region at %d past end of buffer", dataAddr)
			}
			copy(buf[dataAddr:end], data)
			return nil
		}
	}
	prefixAddr, err := allocVarBytes(a, data)
	if err != nil {
		return err
	}
	if err := a.SetValueAddress(cur.SlotAddr, prefixAddr); err != nil {
		return asArenaErr(err)
	}
	cur.ValueAddr = prefixAddr
	return nil
}

func allocVarBytes(a *arena.Arena, data []byte) (arena.Address, error) {
	w := int(a.Width())
	prefixAddr, err := a.Malloc(make([]byte, w))
	if err != nil {
		return 0, asArenaErr(err)
	}
	if err := a.SetValueAddress(prefixAddr, arena.Address(len(data))); err != nil {
		return 0, asArenaErr(err)
	}
	if _, err := a.MallocBorrow(data); err != nil {
		return 0, asArenaErr(err)
	}
	return prefixAddr, nil
}

func getVarBytes(a *arena.Arena, cur *Cursor) (any, error) {
	length, err := a.ReadAddress(cur.ValueAddr)
	if err != nil {
		return nil, asArenaErr(err)
	}
	w := int(a.Width())
	raw, ok := a.Bytes(cur.ValueAddr+arena.Address(w), int(length))
	if !ok {
		return nil, newErr(KindCorruption, "data region at %d (len %d) past end of buffer", cur.ValueAddr, length)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}
