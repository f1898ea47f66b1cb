// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// Codec is the per-scalar-kind contract spec.md §4.2 describes: each
// scalar TypeKey knows its own in-buffer footprint, default handling
// and sort-preserving encoding (if declared Sortable). Codecs have no
// JSON projection: values are read and written only as Go-native
// types, and JSON appears only in the schema package.
// Dispatch is a map lookup on TypeKey, never dynamic type-switching on
// a Go value — the same "closed tagged union, match on the tag" shape
// spec.md §9 calls for, generalizing the teacher's FieldCoder interface
// in ts/fieldcoder.go (BitSize/Encode keyed by Col.Type) to a fuller
// contract that also knows how to read, default and sort.
type Codec interface {
	// Set writes value — a Go-native representation appropriate to the
	// node's Kind (int64, float64, bool, schema.Decimal, [16]byte,
	// uint64, schema.GeoPoint, []byte, string, or an option's choice
	// name as a string) — at cur, setting cur.ValueAddr when the write
	// allocates. cur must already be committed (not virtual).
	Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error

	// Get reads the value at cur. If cur.IsAbsent() and node.Default is
	// set, Get returns the default without touching the arena (spec.md
	// §4.2 "Default application"); if absent with no default, it
	// returns (nil, nil).
	Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error)

	// Size reports the in-buffer footprint of the value at cur,
	// including any length prefix, or 0 if cur.IsAbsent().
	Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error)

	// SortKey renders value as the sort-preserving byte encoding
	// promised by node.Sortable. Callers must check node.Sortable
	// themselves; SortKey does not.
	SortKey(node *schema.Node, value any) ([]byte, error)
}

var codecs = map[schema.TypeKey]Codec{
	schema.KindInt:     codecInt{},
	schema.KindFloat:   codecFloat{},
	schema.KindBool:    codecBool{},
	schema.KindDecimal: codecDecimal{},
	schema.KindUUID:    codecUUID{},
	schema.KindULID:    codecULID{},
	schema.KindDate:    codecDate{},
	schema.KindGeo:     codecGeo{},
	schema.KindBytes:   codecBytes{},
	schema.KindString:  codecString{},
	schema.KindOption:  codecOption{},
}

// CodecFor returns the registered Codec for kind, or ok=false for
// container kinds (Table/Tuple/List/Map), which are handled by the
// collection engines instead.
func CodecFor(kind schema.TypeKey) (Codec, bool) {
	c, ok := codecs[kind]
	return c, ok
}

// setFixed writes raw, a fixed-width payload whose length never changes
// across overwrites, at cur: in place if cur already has a value
// address, or via a fresh Malloc (threaded back through SetValueAddress)
// the first time a value is written. Every fixed-width scalar codec
// (int, float, bool, decimal, uuid, ulid, date, geo, option) shares this
// shape; only the variable-length bytes/string codecs need their own
// grow/reuse/truncate logic (spec.md §9's Open Question).
//
// By the time Set is called, cur.SlotAddr is always a real, already
// materialized slot — the buffer façade commits virtual List/Map
// cursors before invoking the codec, so codecs never see Virtual==true.
func setFixed(a *arena.Arena, cur *Cursor, raw []byte) error {
	if cur.ValueAddr != arena.NoAddress {
		buf := a.WriteBytes()
		end := uint64(cur.ValueAddr) + uint64(len(raw))
		if end > uint64(len(buf)) {
			return newErr(KindCorruption, "value at %d (width %d) past end of buffer", cur.ValueAddr, len(raw))
		}
		copy(buf[cur.ValueAddr:end], raw)
		return nil
	}
	addr, err := a.Malloc(raw)
	if err != nil {
		return asArenaErr(err)
	}
	if err := a.SetValueAddress(cur.SlotAddr, addr); err != nil {
		return asArenaErr(err)
	}
	cur.ValueAddr = addr
	return nil
}

// readFixed reads the n-byte payload at cur.ValueAddr. Callers must
// already know cur is present (IsAbsent checked, default applied).
func readFixed(a *arena.Arena, cur *Cursor, n int) ([]byte, error) {
	raw, ok := a.Bytes(cur.ValueAddr, n)
	if !ok {
		return nil, newErr(KindCorruption, "value at %d (width %d) past end of buffer", cur.ValueAddr, n)
	}
	return raw, nil
}
