// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import "github.com/solidcoredata/noproto/arena"

// Cursor locates one value inside a buffer: the schema node that
// describes it, the slot address inside its parent where the value's
// address lives, and the value's own address (0 if absent). This is
// the lightweight locator spec.md §3/§4 builds every read and write
// around; codecs and collection engines take a *Cursor plus the arena
// and schema, never a raw address alone, so a single malformed offset
// can't silently wander into the wrong node's bytes.
//
// For Table and Tuple children the slot always exists once the
// collection itself has been materialized (their spines are
// fixed-size and allocated in full up front — spec.md §4.3/§4.4), so
// only the *value* can be absent (ValueAddr == 0) there. List and Map
// are sparse linked sequences: a key/index with no node yet has no
// slot at all, which is what Virtual records — see listCommit/
// mapCommit below, populated only in that case.
type Cursor struct {
	NodeIdx   int
	SlotAddr  arena.Address
	ValueAddr arena.Address
	Virtual   bool

	listCommit *listVirtual
	mapCommit  *mapVirtual
}

// listVirtual carries what List.CommitVirtual needs to splice a fresh
// node into the chain between two known neighbors (or at an end).
type listVirtual struct {
	headRecordAddr arena.Address
	prevNodeAddr   arena.Address // 0 if inserting before the current head
	nextNodeAddr   arena.Address // 0 if inserting after the current tail
	index          uint16
}

// mapVirtual carries what Map.CommitVirtual needs to append a fresh
// keyed node at the end of the chain.
type mapVirtual struct {
	headRecordAddr arena.Address
	tailNodeAddr   arena.Address // 0 if the map is currently empty
	key            string
}

// IsAbsent reports whether this cursor currently addresses no value:
// either it is virtual (no slot yet) or its slot holds the zero
// address (slot exists, nothing written there).
func (c *Cursor) IsAbsent() bool {
	return c.Virtual || c.ValueAddr == arena.NoAddress
}
