// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"go.uber.org/zap"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// compactInto builds a fresh arena at newWidth and copies every live
// value reachable from oldArena's root into it (spec.md §4.7). Copying
// goes through each node's Codec.Get/Set rather than a raw byte copy:
// variable-length payloads carry a W-byte length prefix whose width
// itself may be changing, so the value must be re-encoded, not
// memcpy'd.
func compactInto(oldArena *arena.Arena, s *schema.Schema, newWidth arena.Width, log *zap.Logger) (*arena.Arena, error) {
	newArena, err := arena.New(newWidth, log)
	if err != nil {
		return nil, wrapErr(KindUnknown, err, "failed to create compaction target arena")
	}
	rootSlot, err := newArena.Malloc(make([]byte, int(newWidth)))
	if err != nil {
		return nil, asArenaErr(err)
	}
	if rootSlot != arena.NoAddress {
		return nil, newErr(KindCorruption, "compaction root slot allocated at non-zero address %d", rootSlot)
	}
	oldRootValue, err := oldArena.ReadAddress(0)
	if err != nil {
		return nil, asArenaErr(err)
	}
	oldCur := &Cursor{NodeIdx: 0, SlotAddr: 0, ValueAddr: oldRootValue}
	newCur := &Cursor{NodeIdx: 0, SlotAddr: 0}
	if err := copyNode(oldArena, newArena, s, 0, oldCur, newCur); err != nil {
		return nil, err
	}
	return newArena, nil
}

// copyNode copies the value described by oldCur (already known
// present) into newCur, which addresses the same schema node in the
// fresh arena. Scalars round-trip through the node's Codec; container
// nodes allocate a fresh body of the right shape and recurse over
// every live child the old collection reports.
func copyNode(oldArena, newArena *arena.Arena, s *schema.Schema, nodeIdx int, oldCur, newCur *Cursor) error {
	if oldCur.IsAbsent() {
		return nil
	}
	node := s.Node(nodeIdx)
	if node == nil {
		return newErr(KindCorruption, "schema node index %d out of range", nodeIdx)
	}
	if !isContainerKind(node.Kind) {
		codec, ok := CodecFor(node.Kind)
		if !ok {
			return newErr(KindCorruption, "no codec registered for kind %s", node.Kind)
		}
		val, err := codec.Get(oldArena, node, oldCur)
		if err != nil {
			return err
		}
		if val == nil {
			return nil
		}
		return codec.Set(newArena, node, newCur, val)
	}

	size := containerBodySize(newArena, node)
	if err := setFixed(newArena, newCur, make([]byte, size)); err != nil {
		return err
	}
	oldColl, err := collectionFor(oldArena, s, nodeIdx, oldCur.ValueAddr)
	if err != nil {
		return err
	}
	newColl, err := collectionFor(newArena, s, nodeIdx, newCur.ValueAddr)
	if err != nil {
		return err
	}
	return oldColl.Iterate(func(key any, childOld *Cursor) error {
		childNew, err := newColl.Select(key)
		if err != nil {
			return err
		}
		if childNew.Virtual {
			if err := newColl.CommitVirtual(childNew); err != nil {
				return err
			}
		}
		return copyNode(oldArena, newArena, s, childOld.NodeIdx, childOld, childNew)
	})
}
