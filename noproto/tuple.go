// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// Tuple implements spec.md §4.4: like Table but positional — the
// spine is M·W bytes, one slot per declared child schema index, keyed
// by integer position instead of name.
type Tuple struct {
	a    *arena.Arena
	s    *schema.Schema
	node *schema.Node
	head arena.Address
}

func (t *Tuple) slotAddr(idx int) arena.Address {
	return t.head + arena.Address(idx)*arena.Address(t.a.Width())
}

func toIndex(key any) (int, error) {
	switch v := key.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	default:
		return 0, newErr(KindTypeMismatch, "expected an integer index, got %T", key)
	}
}

// Select resolves a positional index to its slot. Out-of-range indices
// fail with OutOfBounds (spec.md §4.4).
func (t *Tuple) Select(key any) (*Cursor, error) {
	idx, err := toIndex(key)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(t.node.Values) {
		return nil, newErr(KindOutOfBounds, "tuple index %d out of range (len %d)", idx, len(t.node.Values))
	}
	slot := t.slotAddr(idx)
	valueAddr, err := t.a.ReadAddress(slot)
	if err != nil {
		return nil, asArenaErr(err)
	}
	return &Cursor{NodeIdx: t.node.Values[idx], SlotAddr: slot, ValueAddr: valueAddr}, nil
}

// CommitVirtual is a no-op: every positional slot exists once the
// tuple itself is materialized.
func (t *Tuple) CommitVirtual(cur *Cursor) error {
	cur.Virtual = false
	return nil
}

func (t *Tuple) Delete(key any) error {
	cur, err := t.Select(key)
	if err != nil {
		return err
	}
	if err := t.a.SetValueAddress(cur.SlotAddr, arena.NoAddress); err != nil {
		return asArenaErr(err)
	}
	return nil
}

// Iterate visits positions in order, skipping absent values unless a
// default is declared for that position's child schema.
func (t *Tuple) Iterate(fn func(key any, cur *Cursor) error) error {
	for i, childIdx := range t.node.Values {
		slot := t.slotAddr(i)
		valueAddr, err := t.a.ReadAddress(slot)
		if err != nil {
			return asArenaErr(err)
		}
		child := t.s.Node(childIdx)
		if valueAddr == arena.NoAddress && (child == nil || child.Default == nil) {
			continue
		}
		cur := &Cursor{NodeIdx: childIdx, SlotAddr: slot, ValueAddr: valueAddr}
		if err := fn(i, cur); err != nil {
			return err
		}
	}
	return nil
}

// SortKey renders the composite sort key of a sorted tuple: the
// concatenation of each child's own sort-preserving encoding, in
// position order (spec.md §4.4, §8). values must have one entry per
// declared child, in the Go-native shape that child's Codec expects.
func (t *Tuple) SortKey(values []any) ([]byte, error) {
	if !t.node.TupleSorted {
		return nil, newErr(KindTypeMismatch, "tuple is not declared sorted")
	}
	if len(values) != len(t.node.Values) {
		return nil, newErr(KindTypeMismatch, "expected %d tuple values, got %d", len(t.node.Values), len(values))
	}
	var out []byte
	for i, childIdx := range t.node.Values {
		child := t.s.Node(childIdx)
		codec, ok := CodecFor(child.Kind)
		if !ok {
			return nil, newErr(KindTypeMismatch, "tuple child %d (kind %s) has no sort-preserving codec", i, child.Kind)
		}
		key, err := codec.SortKey(child, values[i])
		if err != nil {
			return nil, err
		}
		out = append(out, key...)
	}
	return out, nil
}
