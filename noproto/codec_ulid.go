// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/oklog/ulid/v2"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecULID implements the 16-byte ULID scalar: a 6-byte big-endian
// millisecond timestamp followed by 10 bytes of randomness, which is
// exactly github.com/oklog/ulid/v2's own wire layout — its [16]byte
// already sorts lexicographically by creation time, so no flip is
// needed.
type codecULID struct{}

func (codecULID) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	id, err := toULID(value)
	if err != nil {
		return err
	}
	raw := id[:]
	return setFixed(a, cur, raw)
}

func (codecULID) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	raw, err := readFixed(a, cur, 16)
	if err != nil {
		return nil, err
	}
	var id ulid.ULID
	copy(id[:], raw)
	return id, nil
}

func (codecULID) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return 16, nil
}

func (codecULID) SortKey(node *schema.Node, value any) ([]byte, error) {
	id, err := toULID(value)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 16)
	copy(out, id[:])
	return out, nil
}

func toULID(value any) (ulid.ULID, error) {
	switch v := value.(type) {
	case ulid.ULID:
		return v, nil
	case [16]byte:
		return ulid.ULID(v), nil
	case string:
		id, err := ulid.ParseStrict(v)
		if err != nil {
			return ulid.ULID{}, newErr(KindTypeMismatch, "invalid ulid string %q: %v", v, err)
		}
		return id, nil
	default:
		return ulid.ULID{}, newErr(KindTypeMismatch, "expected a ulid.ULID, got %T", value)
	}
}
