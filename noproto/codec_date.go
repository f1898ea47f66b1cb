// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"encoding/binary"
	"time"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecDate implements the 8-byte date scalar: unsigned milliseconds
// since the Unix epoch, big-endian (spec.md §4.2). Unsigned values
// already sort correctly by memcmp, so there is no flip to apply
// regardless of node.Sortable.
type codecDate struct{}

func (codecDate) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	ms, err := toEpochMillis(value)
	if err != nil {
		return err
	}
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, ms)
	return setFixed(a, cur, raw)
}

func (codecDate) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	raw, err := readFixed(a, cur, 8)
	if err != nil {
		return nil, err
	}
	ms := binary.BigEndian.Uint64(raw)
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func (codecDate) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return 8, nil
}

func (codecDate) SortKey(node *schema.Node, value any) ([]byte, error) {
	ms, err := toEpochMillis(value)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, ms)
	return out, nil
}

func toEpochMillis(value any) (uint64, error) {
	switch v := value.(type) {
	case time.Time:
		return uint64(v.UnixMilli()), nil
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	default:
		return 0, newErr(KindTypeMismatch, "expected a time.Time, got %T", value)
	}
}
