// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"go.uber.org/zap"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// Buffer is the façade spec.md §4.8 describes: path resolution,
// compaction and byte-size accounting layered over the arena, schema
// and collection engines. It owns exactly one Arena and one Schema and
// is not safe for concurrent use (spec.md §5).
type Buffer struct {
	arena  *arena.Arena
	schema *schema.Schema
	log    *zap.Logger
}

// NewBuffer allocates an empty buffer against s: the root preamble (a
// single W-byte slot at address 0, per spec.md §3 "Lifecycle") with
// nothing else materialized. log may be nil.
func NewBuffer(s *schema.Schema, width arena.Width, log *zap.Logger) (*Buffer, error) {
	if err := schema.Validate(s); err != nil {
		return nil, wrapErr(KindSchemaInvalid, err, "schema failed validation")
	}
	if log == nil {
		log = defaultLogger()
	}
	a, err := arena.New(width, log)
	if err != nil {
		return nil, wrapErr(KindUnknown, err, "failed to create arena")
	}
	rootSlot, err := a.Malloc(make([]byte, int(width)))
	if err != nil {
		return nil, asArenaErr(err)
	}
	if rootSlot != arena.NoAddress {
		return nil, newErr(KindCorruption, "root slot allocated at non-zero address %d", rootSlot)
	}
	return &Buffer{arena: a, schema: s, log: log}, nil
}

// LoadBuffer wraps previously serialized buffer bytes (spec.md §6.3:
// a leading 1-byte width tag followed by the arena contents) as a
// Buffer over s.
func LoadBuffer(s *schema.Schema, data []byte, log *zap.Logger) (*Buffer, error) {
	if err := schema.Validate(s); err != nil {
		return nil, wrapErr(KindSchemaInvalid, err, "schema failed validation")
	}
	if len(data) < 1 {
		return nil, newErr(KindCorruption, "buffer bytes too short for a width tag")
	}
	width := arena.Width(data[0])
	if !width.Valid() {
		return nil, newErr(KindSchemaInvalid, "invalid buffer width tag %d", data[0])
	}
	if log == nil {
		log = defaultLogger()
	}
	a, err := arena.FromBytes(width, data[1:], log)
	if err != nil {
		return nil, wrapErr(KindUnknown, err, "failed to wrap buffer bytes")
	}
	return &Buffer{arena: a, schema: s, log: log}, nil
}

// Bytes serializes the buffer to its on-disk form: a 1-byte width tag
// followed by the raw arena contents.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, 1, 1+b.arena.Len())
	out[0] = byte(b.arena.Width())
	out = append(out, b.arena.ReadBytes()...)
	return out
}

// CalcBytes returns the current size of the buffer's arena. The
// serialized form from Bytes is one byte longer (the width tag).
func (b *Buffer) CalcBytes() int { return b.arena.Len() }

func (b *Buffer) rootCursor() (*Cursor, error) {
	valueAddr, err := b.arena.ReadAddress(0)
	if err != nil {
		return nil, asArenaErr(err)
	}
	return &Cursor{NodeIdx: 0, SlotAddr: 0, ValueAddr: valueAddr}, nil
}

func isContainerKind(k schema.TypeKey) bool {
	switch k {
	case schema.KindTable, schema.KindTuple, schema.KindList, schema.KindMap:
		return true
	}
	return false
}

// containerBodySize computes the fixed allocation a freshly
// materialized container needs before any child exists: N·W for
// Table, M·W for Tuple (spec.md §4.3/§4.4), 3·W for a List head
// record (§4.5), 2·W for a Map head record (§4.6).
func containerBodySize(a *arena.Arena, node *schema.Node) int {
	w := int(a.Width())
	switch node.Kind {
	case schema.KindTable:
		return len(node.Columns) * w
	case schema.KindTuple:
		return len(node.Values) * w
	case schema.KindList:
		return 3 * w
	case schema.KindMap:
		return 2 * w
	}
	return 0
}

// schemaChildIndex resolves key against node's declared children using
// only the schema — used when a path walks through a container that
// isn't materialized in the arena yet, so there is nothing to Select
// against. It still enforces UnknownField/OutOfBounds/TypeMismatch for
// a malformed path.
func schemaChildIndex(node *schema.Node, key any) (int, error) {
	switch node.Kind {
	case schema.KindTable:
		name, ok := key.(string)
		if !ok {
			return 0, newErr(KindTypeMismatch, "table select expects a string column name, got %T", key)
		}
		for _, c := range node.Columns {
			if c.Name == name {
				return c.Child, nil
			}
		}
		return 0, newErr(KindUnknownField, "table has no column %q", name)
	case schema.KindTuple:
		idx, err := toIndex(key)
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx >= len(node.Values) {
			return 0, newErr(KindOutOfBounds, "tuple index %d out of range (len %d)", idx, len(node.Values))
		}
		return node.Values[idx], nil
	case schema.KindList:
		idx, err := toIndex(key)
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx > 0xFFFF {
			return 0, newErr(KindOutOfBounds, "list index %d out of range (0..65535)", idx)
		}
		return node.Of, nil
	case schema.KindMap:
		if _, ok := key.(string); !ok {
			return 0, newErr(KindTypeMismatch, "map select expects a string key, got %T", key)
		}
		return node.Value, nil
	default:
		return 0, newErr(KindTypeMismatch, "node (kind %s) is not a container", node.Kind)
	}
}

// resolveForRead walks path without materializing anything. Once it
// crosses an unmaterialized container, the remainder of the walk is
// validated purely against the schema and the terminal cursor comes
// back virtual/absent — codecs treat that as "apply default, or nil".
func (b *Buffer) resolveForRead(path []any) (*schema.Node, *Cursor, error) {
	nodeIdx := 0
	cur, err := b.rootCursor()
	if err != nil {
		return nil, nil, err
	}
	for _, key := range path {
		node := b.schema.Node(nodeIdx)
		if !isContainerKind(node.Kind) {
			return nil, nil, newErr(KindTypeMismatch, "path descends past a scalar node")
		}
		if cur.IsAbsent() {
			childIdx, err := schemaChildIndex(node, key)
			if err != nil {
				return nil, nil, err
			}
			nodeIdx = childIdx
			cur = &Cursor{NodeIdx: nodeIdx, Virtual: true}
			continue
		}
		coll, err := collectionFor(b.arena, b.schema, nodeIdx, cur.ValueAddr)
		if err != nil {
			return nil, nil, err
		}
		childCur, err := coll.Select(key)
		if err != nil {
			return nil, nil, err
		}
		cur = childCur
		nodeIdx = cur.NodeIdx
	}
	return b.schema.Node(nodeIdx), cur, nil
}

// Get resolves path to a scalar value, applying the schema default
// when the value (or one of its ancestor containers) is absent.
func (b *Buffer) Get(path ...any) (any, error) {
	node, cur, err := b.resolveForRead(path)
	if err != nil {
		return nil, err
	}
	if isContainerKind(node.Kind) {
		return nil, newErr(KindTypeMismatch, "path addresses a container, not a scalar value")
	}
	codec, ok := CodecFor(node.Kind)
	if !ok {
		return nil, newErr(KindCorruption, "no codec registered for kind %s", node.Kind)
	}
	return codec.Get(b.arena, node, cur)
}

// Set resolves path, materializing any absent intermediate containers
// and committing a virtual terminal List/Map cursor, then writes value
// through the terminal node's Codec.
func (b *Buffer) Set(value any, path ...any) error {
	nodeIdx := 0
	cur, err := b.rootCursor()
	if err != nil {
		return err
	}
	var parent Collection
	for _, key := range path {
		node := b.schema.Node(nodeIdx)
		if !isContainerKind(node.Kind) {
			return newErr(KindTypeMismatch, "path descends past a scalar node")
		}
		if cur.Virtual {
			if err := parent.CommitVirtual(cur); err != nil {
				return err
			}
		}
		if cur.ValueAddr == arena.NoAddress {
			size := containerBodySize(b.arena, node)
			if err := setFixed(b.arena, cur, make([]byte, size)); err != nil {
				return err
			}
		}
		coll, err := collectionFor(b.arena, b.schema, nodeIdx, cur.ValueAddr)
		if err != nil {
			return err
		}
		childCur, err := coll.Select(key)
		if err != nil {
			return err
		}
		parent = coll
		cur = childCur
		nodeIdx = cur.NodeIdx
	}
	if cur.Virtual {
		if parent == nil {
			return newErr(KindCorruption, "root cursor cannot be virtual")
		}
		if err := parent.CommitVirtual(cur); err != nil {
			return err
		}
	}
	node := b.schema.Node(nodeIdx)
	if isContainerKind(node.Kind) {
		return newErr(KindTypeMismatch, "path addresses a container, not a scalar value")
	}
	codec, ok := CodecFor(node.Kind)
	if !ok {
		return newErr(KindCorruption, "no codec registered for kind %s", node.Kind)
	}
	return codec.Set(b.arena, node, cur, value)
}

// Del clears the slot pointer named by path's final element; a no-op
// if any ancestor container, or the element itself, is already
// absent (spec.md §3 "Lifecycle": delete clears a pointer, never
// reclaims space).
func (b *Buffer) Del(path ...any) error {
	if len(path) == 0 {
		return asArenaErr(b.arena.SetValueAddress(0, arena.NoAddress))
	}
	nodeIdx := 0
	cur, err := b.rootCursor()
	if err != nil {
		return err
	}
	for _, key := range path[:len(path)-1] {
		node := b.schema.Node(nodeIdx)
		if !isContainerKind(node.Kind) {
			return newErr(KindTypeMismatch, "path descends past a scalar node")
		}
		if cur.IsAbsent() {
			return nil
		}
		coll, err := collectionFor(b.arena, b.schema, nodeIdx, cur.ValueAddr)
		if err != nil {
			return err
		}
		childCur, err := coll.Select(key)
		if err != nil {
			return err
		}
		cur = childCur
		nodeIdx = cur.NodeIdx
	}
	node := b.schema.Node(nodeIdx)
	if !isContainerKind(node.Kind) {
		return newErr(KindTypeMismatch, "path descends past a scalar node")
	}
	if cur.IsAbsent() {
		return nil
	}
	coll, err := collectionFor(b.arena, b.schema, nodeIdx, cur.ValueAddr)
	if err != nil {
		return err
	}
	return coll.Delete(path[len(path)-1])
}

// Compact rebuilds the buffer's arena at newWidth, copying every live
// reachable value from the root downward and discarding garbage
// (spec.md §4.7). On success the Buffer's existing Arena is swapped in
// place; on CapacityExceeded the Buffer is left untouched and the
// caller may retry with a larger width.
func (b *Buffer) Compact(newWidth arena.Width) error {
	fresh, err := compactInto(b.arena, b.schema, newWidth, b.log)
	if err != nil {
		return err
	}
	return b.arena.Reset(fresh.ReadBytes(), newWidth)
}
