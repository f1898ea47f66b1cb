// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"encoding/binary"
	"math"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecFloat implements the fixed-width float scalar: width ∈ {4,8}
// bytes, IEEE-754, big-endian. spec.md §9 groups floats with the other
// fixed-width numeric kinds under "signed types use a sign-flip
// (XOR high bit)"; this codec follows that literal instruction rather
// than the more elaborate all-bits-flip-if-negative transform some
// sortable-float encodings use, since neither spec.md nor
// original_source/ spells out the latter for this format.
type codecFloat struct{}

func (codecFloat) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	f, err := toFloat64(value)
	if err != nil {
		return err
	}
	raw := encodeFloatBits(f, int(node.FloatWidth), node.Sortable)
	return setFixed(a, cur, raw)
}

func (codecFloat) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	raw, err := readFixed(a, cur, int(node.FloatWidth))
	if err != nil {
		return nil, err
	}
	return decodeFloatBits(raw, node.Sortable), nil
}

func (codecFloat) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return int(node.FloatWidth), nil
}

func (codecFloat) SortKey(node *schema.Node, value any) ([]byte, error) {
	f, err := toFloat64(value)
	if err != nil {
		return nil, err
	}
	return encodeFloatBits(f, int(node.FloatWidth), true), nil
}

func encodeFloatBits(f float64, widthBytes int, flip bool) []byte {
	out := make([]byte, widthBytes)
	switch widthBytes {
	case 4:
		bits := uint64(math.Float32bits(float32(f)))
		if flip {
			bits = flipHighBit(bits, 4)
		}
		binary.BigEndian.PutUint32(out, uint32(bits))
	case 8:
		bits := math.Float64bits(f)
		if flip {
			bits = flipHighBit(bits, 8)
		}
		binary.BigEndian.PutUint64(out, bits)
	}
	return out
}

func decodeFloatBits(raw []byte, flip bool) float64 {
	switch len(raw) {
	case 4:
		bits := uint64(binary.BigEndian.Uint32(raw))
		if flip {
			bits = flipHighBit(bits, 4)
		}
		return float64(math.Float32frombits(uint32(bits)))
	case 8:
		bits := binary.BigEndian.Uint64(raw)
		if flip {
			bits = flipHighBit(bits, 8)
		}
		return math.Float64frombits(bits)
	}
	return 0
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, newErr(KindTypeMismatch, "expected a float, got %T", value)
	}
}
