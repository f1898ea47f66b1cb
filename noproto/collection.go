// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// Collection is the contract shared by the four container engines
// (spec.md §4.3-§4.6): locate a child by key, commit a virtual cursor
// into a real one, delete a child, and walk children in the engine's
// defined order. Table/Tuple select by fixed position (name or index
// into a pre-sized spine); List/Map select by index/key into a sparse
// linked sequence and may hand back a virtual Cursor. This generalizes
// ts/writer.go's Col/TableRef fixed positional-column walk (§4.3/§4.4)
// to the two additional sparse-linked shapes §4.5/§4.6 need.
type Collection interface {
	// Select locates the child identified by key (a column name for
	// Table, an int index for Tuple/List, a string key for Map). A
	// not-yet-present List/Map entry comes back as a virtual Cursor
	// instead of an error. It fails for an out-of-range Tuple/List index
	// (OutOfBounds), an unknown Table column (UnknownField), or a key of
	// the wrong Go type (TypeMismatch).
	Select(key any) (*Cursor, error)

	// CommitVirtual materializes cur's slot — appending it to the
	// collection's spine or splicing it into the linked chain — so a
	// codec's Set can then write the value itself. No-op if cur is
	// already non-virtual.
	CommitVirtual(cur *Cursor) error

	// Delete clears the child's slot pointer without reclaiming the
	// space it referenced (spec.md §3 "Lifecycle": reclaimed only by
	// compaction).
	Delete(key any) error

	// Iterate visits every present child in the engine's defined
	// order, calling fn with the key or index and that child's Cursor.
	// It stops and returns fn's error if fn returns non-nil.
	Iterate(fn func(key any, cur *Cursor) error) error
}

// newCursor builds a non-virtual Cursor from its schema node index,
// slot address and value address.
func newCursor(nodeIdx int, slotAddr, valueAddr arena.Address) *Cursor {
	return &Cursor{NodeIdx: nodeIdx, SlotAddr: slotAddr, ValueAddr: valueAddr}
}

// collectionFor returns the Collection engine for a container node
// rooted at headAddr — headAddr is the address of the spine (Table/
// Tuple) or head record (List/Map), i.e. cur.ValueAddr for the cursor
// that located this container.
func collectionFor(a *arena.Arena, s *schema.Schema, nodeIdx int, headAddr arena.Address) (Collection, error) {
	node := s.Node(nodeIdx)
	if node == nil {
		return nil, newErr(KindCorruption, "schema node index %d out of range", nodeIdx)
	}
	switch node.Kind {
	case schema.KindTable:
		return &Table{a: a, s: s, node: node, head: headAddr}, nil
	case schema.KindTuple:
		return &Tuple{a: a, s: s, node: node, head: headAddr}, nil
	case schema.KindList:
		return &List{a: a, s: s, node: node, head: headAddr}, nil
	case schema.KindMap:
		return &Map{a: a, s: s, node: node, head: headAddr}, nil
	default:
		return nil, newErr(KindTypeMismatch, "node %d (kind %s) is not a container", nodeIdx, node.Kind)
	}
}
