// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"encoding/binary"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecDecimal implements the fixed-point decimal scalar: an 8-byte
// two's-complement mantissa, big-endian, sign-flipped when sortable.
// The exponent lives on the schema node, not per-value — a decimal
// field always stores its mantissa rescaled to node.Exp, the same
// rescale-before-compare discipline original_source/src/pointer/dec.rs
// applies before any ordering or equality check.
type codecDecimal struct{}

func (codecDecimal) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	d, err := toDecimal(value, node.Exp)
	if err != nil {
		return err
	}
	raw := encodeIntBits(uint64(d.Num), 8, node.Sortable)
	return setFixed(a, cur, raw)
}

func (codecDecimal) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	raw, err := readFixed(a, cur, 8)
	if err != nil {
		return nil, err
	}
	bits := decodeIntBits(raw, node.Sortable)
	return schema.Decimal{Num: int64(bits), Exp: node.Exp}, nil
}

func (codecDecimal) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return 8, nil
}

func (codecDecimal) SortKey(node *schema.Node, value any) ([]byte, error) {
	d, err := toDecimal(value, node.Exp)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, flipHighBit(uint64(d.Num), 8))
	return out, nil
}

// toDecimal accepts a schema.Decimal (rescaled to targetExp if its own
// Exp differs) or a bare int64 (treated as already at targetExp).
func toDecimal(value any, targetExp uint8) (schema.Decimal, error) {
	switch v := value.(type) {
	case schema.Decimal:
		return v.Rescale(targetExp), nil
	case int64:
		return schema.Decimal{Num: v, Exp: targetExp}, nil
	case int:
		return schema.Decimal{Num: int64(v), Exp: targetExp}, nil
	default:
		return schema.Decimal{}, newErr(KindTypeMismatch, "expected a schema.Decimal, got %T", value)
	}
}
