// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// Table implements spec.md §4.3: a fixed spine of N·W bytes, one slot
// per declared column in schema order, column order never stored in
// the buffer. Grounded on ts/writer.go's Col/Table — a fixed,
// positionally-addressed list of named fields — generalized from a
// streaming column writer to a random-access in-place spine.
type Table struct {
	a    *arena.Arena
	s    *schema.Schema
	node *schema.Node
	head arena.Address
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.node.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) slotAddr(idx int) arena.Address {
	return t.head + arena.Address(idx)*arena.Address(t.a.Width())
}

// Select resolves a column name to its slot. Every column's slot is
// allocated as part of the table's spine, so the returned cursor is
// never virtual — only its value (ValueAddr) may be absent.
func (t *Table) Select(key any) (*Cursor, error) {
	name, ok := key.(string)
	if !ok {
		return nil, newErr(KindTypeMismatch, "table select expects a string column name, got %T", key)
	}
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil, newErr(KindUnknownField, "table has no column %q", name)
	}
	slot := t.slotAddr(idx)
	valueAddr, err := t.a.ReadAddress(slot)
	if err != nil {
		return nil, asArenaErr(err)
	}
	return &Cursor{NodeIdx: t.node.Columns[idx].Child, SlotAddr: slot, ValueAddr: valueAddr}, nil
}

// CommitVirtual is a no-op for Table: a column's slot exists from the
// moment the table itself is materialized.
func (t *Table) CommitVirtual(cur *Cursor) error {
	cur.Virtual = false
	return nil
}

func (t *Table) Delete(key any) error {
	cur, err := t.Select(key)
	if err != nil {
		return err
	}
	if err := t.a.SetValueAddress(cur.SlotAddr, arena.NoAddress); err != nil {
		return asArenaErr(err)
	}
	return nil
}

// Iterate visits columns in schema order, skipping columns whose value
// is absent unless the column's schema declares a default (spec.md
// §4.3).
func (t *Table) Iterate(fn func(key any, cur *Cursor) error) error {
	for i, c := range t.node.Columns {
		slot := t.slotAddr(i)
		valueAddr, err := t.a.ReadAddress(slot)
		if err != nil {
			return asArenaErr(err)
		}
		child := t.s.Node(c.Child)
		if valueAddr == arena.NoAddress && (child == nil || child.Default == nil) {
			continue
		}
		cur := &Cursor{NodeIdx: c.Child, SlotAddr: slot, ValueAddr: valueAddr}
		if err := fn(c.Name, cur); err != nil {
			return err
		}
	}
	return nil
}
