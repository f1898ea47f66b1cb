// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/google/uuid"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecUUID implements the 16-byte UUID scalar, backed by
// github.com/google/uuid's [16]byte representation rather than a
// hand-rolled layout — UUID has no sort-preserving transform of its
// own (spec.md doesn't declare it Sortable-capable) so there is no
// flip to apply here.
type codecUUID struct{}

func (codecUUID) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	id, err := toUUID(value)
	if err != nil {
		return err
	}
	raw := id[:]
	return setFixed(a, cur, raw)
}

func (codecUUID) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
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
	var id uuid.UUID
	copy(id[:], raw)
	return id, nil
}

func (codecUUID) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return 16, nil
}

func (codecUUID) SortKey(node *schema.Node, value any) ([]byte, error) {
	id, err := toUUID(value)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 16)
	copy(out, id[:])
	return out, nil
}

func toUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.UUID{}, newErr(KindTypeMismatch, "invalid uuid string %q: %v", v, err)
		}
		return id, nil
	default:
		return uuid.UUID{}, newErr(KindTypeMismatch, "expected a uuid.UUID, got %T", value)
	}
}
