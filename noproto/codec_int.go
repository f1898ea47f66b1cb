// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"encoding/binary"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecInt implements spec.md §4.2's fixed-width integer scalar:
// width ∈ {1,2,4,8} bytes, big-endian, with the shared to_signed flip
// applied when node.IntSigned and node.Sortable both hold. Grounded on
// ts/fieldcoder.go's coderInt64 (BitSize/Encode pair keyed off Col.Type)
// generalized to the four declared widths instead of one.
type codecInt struct{}

func (codecInt) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	v, err := toInt64(value)
	if err != nil {
		return err
	}
	raw := encodeIntBits(uint64(v), int(node.IntWidth), node.IntSigned && node.Sortable)
	return setFixed(a, cur, raw)
}

func (codecInt) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	raw, err := readFixed(a, cur, int(node.IntWidth))
	if err != nil {
		return nil, err
	}
	bits := decodeIntBits(raw, node.IntSigned && node.Sortable)
	if !node.IntSigned {
		// Returned as the unsigned Go type so values in the upper half of
		// the uint64 domain (>= 2^63) round-trip correctly (spec.md §8
		// property 1) instead of wrapping to a negative int64.
		return bits, nil
	}
	return signExtend(bits, int(node.IntWidth), node.IntSigned), nil
}

func (codecInt) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return int(node.IntWidth), nil
}

func (codecInt) SortKey(node *schema.Node, value any) ([]byte, error) {
	v, err := toInt64(value)
	if err != nil {
		return nil, err
	}
	return encodeIntBits(uint64(v), int(node.IntWidth), node.IntSigned), nil
}

// encodeIntBits truncates v to widthBytes, flipping the high bit first
// when flip is requested (signed values being made sort-comparable).
func encodeIntBits(v uint64, widthBytes int, flip bool) []byte {
	if flip {
		v = flipHighBit(v, widthBytes)
	}
	out := make([]byte, widthBytes)
	switch widthBytes {
	case 1:
		out[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(out, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(out, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(out, v)
	}
	return out
}

func decodeIntBits(raw []byte, flip bool) uint64 {
	var v uint64
	switch len(raw) {
	case 1:
		v = uint64(raw[0])
	case 2:
		v = uint64(binary.BigEndian.Uint16(raw))
	case 4:
		v = uint64(binary.BigEndian.Uint32(raw))
	case 8:
		v = binary.BigEndian.Uint64(raw)
	}
	if flip {
		v = flipHighBit(v, len(raw))
	}
	return v
}

// signExtend interprets bits as either an unsigned or two's-complement
// signed integer of widthBytes, returning the canonical int64.
func signExtend(bits uint64, widthBytes int, signed bool) int64 {
	if !signed {
		return int64(bits)
	}
	shift := uint(64 - widthBytes*8)
	return int64(bits<<shift) >> shift
}

// toInt64 accepts the handful of Go-native shapes a caller plausibly
// passes for an integer field.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	default:
		return 0, newErr(KindTypeMismatch, "expected an integer, got %T", value)
	}
}
