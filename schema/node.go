// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema implements the Schema Model: a flat, index-addressed
// array of parsed schema nodes describing the structure and types of a
// NoProto buffer (spec.md §3, §4, §6). A Schema is parsed once, from
// either its human-authored JSON form or its compact byte form, and is
// shared read-only by every Cursor, Codec and Collection that walks a
// buffer built against it.
package schema

import "fmt"

// TypeKey is the tag of a Node's closed tagged union, mirroring the
// teacher's Type enum in ts/writer.go (Hash/Int64/Bool/String/Bytes/Any)
// generalized to every scalar and collection kind spec.md §3 names.
type TypeKey uint8

// The full set of recognized schema node kinds.
const (
	KindInvalid TypeKey = iota
	KindInt
	KindFloat
	KindBool
	KindDecimal
	KindUUID
	KindULID
	KindDate
	KindGeo
	KindBytes
	KindString
	KindOption
	KindTable
	KindTuple
	KindList
	KindMap
)

func (k TypeKey) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDecimal:
		return "decimal"
	case KindUUID:
		return "uuid"
	case KindULID:
		return "ulid"
	case KindDate:
		return "date"
	case KindGeo:
		return "geo"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindOption:
		return "option"
	case KindTable:
		return "table"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

// Column is one entry of a Table node: a name and the index of the
// child Node describing its value. Column order is fixed by this slice
// and is never stored in the buffer (spec.md §4.3, §9).
type Column struct {
	Name  string
	Child int
}

// Node is one entry of the flat schema array. It is a sum type over
// every TypeKey implemented as a single struct with kind-specific
// fields left zero for kinds that don't use them — the idiomatic Go
// shape for a small closed set of descriptor variants (mirrors how the
// teacher's own control/column table carries every column's metadata,
// scalar or not, in one flat row shape).
//
// Child references (Of, Value, Values, Columns[].Child) are indices
// into the owning Schema.Nodes slice, never pointers: this keeps the
// schema a cycle-free, trivially cloneable array addressable by a
// single integer (spec.md §9).
type Node struct {
	Kind     TypeKey
	Sortable bool

	// Default holds the canonical decoded default value for this node,
	// or nil if the schema declares none. Its concrete Go type depends
	// on Kind: int64 (Int), float64 (Float), bool (Bool), Decimal
	// (Decimal), uuid.UUID (UUID), ulid.ULID (ULID), uint64 (Date),
	// GeoPoint (Geo), []byte (Bytes), string (String). Never populated
	// for containers.
	Default any

	// Int
	IntWidth  uint8 // 1, 2, 4 or 8
	IntSigned bool

	// Float
	FloatWidth uint8 // 4 or 8

	// Decimal
	Exp uint8

	// Bytes / String
	Size uint16 // 0 means variable-length

	// Option / Enum
	Choices []string

	// Geo
	GeoPrecision uint8 // 4, 8 or 16

	// Table
	Columns []Column

	// Tuple
	Values      []int
	TupleSorted bool

	// List
	Of int

	// Map
	Value int
}

// Decimal is the canonical decoded form of a decimal default: v = Num *
// 10^-Exp (spec.md §4.2).
type Decimal struct {
	Num int64
	Exp uint8
}

// Rescale returns d's mantissa expressed at toExp, following
// original_source/src/pointer/dec.rs's rescale-before-compare
// discipline: multiplying by 10 when toExp is larger (more precise),
// dividing (truncating) when toExp is smaller.
func (d Decimal) Rescale(toExp uint8) Decimal {
	if d.Exp == toExp {
		return d
	}
	num := d.Num
	if toExp > d.Exp {
		for i := uint8(0); i < toExp-d.Exp; i++ {
			num *= 10
		}
	} else {
		for i := uint8(0); i < d.Exp-toExp; i++ {
			num /= 10
		}
	}
	return Decimal{Num: num, Exp: toExp}
}

// Cmp compares d and other numerically, rescaling whichever has the
// smaller Exp up to the larger before comparing mantissas (seed
// scenario E6: NP_Dec{20201,2} == NP_Dec{2020100,4}).
func (d Decimal) Cmp(other Decimal) int {
	exp := d.Exp
	if other.Exp > exp {
		exp = other.Exp
	}
	a, b := d.Rescale(exp).Num, other.Rescale(exp).Num
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// GeoPoint is the canonical decoded form of a geo default.
type GeoPoint struct {
	Lat, Lon float64
}

// Schema is the flat, index-addressed node array. Nodes[0] is always
// the root.
type Schema struct {
	Nodes []Node
}

// Root returns the root node, Nodes[0].
func (s *Schema) Root() *Node {
	if len(s.Nodes) == 0 {
		return nil
	}
	return &s.Nodes[0]
}

// Node returns a pointer into Nodes at idx, or nil if idx is out of
// range. Schema child references are always validated at parse time
// (see Validate), so a well-formed Schema never produces an
// out-of-range idx during a path walk.
func (s *Schema) Node(idx int) *Node {
	if idx < 0 || idx >= len(s.Nodes) {
		return nil
	}
	return &s.Nodes[idx]
}
