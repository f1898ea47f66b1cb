// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ToBytes emits s in its compact byte form (spec.md §6.2): a node
// count followed by each Node of s.Nodes in order, each prefixed by a
// 1-byte TypeKey and then type-specific fields. Because Nodes is
// already a flat, index-addressed array, this is a straight linear
// walk — no recursion, no tree shape to reconstruct, unlike the JSON
// form where children are nested under their parent.
func (s *Schema) ToBytes() ([]byte, error) {
	if len(s.Nodes) == 0 {
		return nil, invalidf("", "schema has no nodes")
	}
	if len(s.Nodes) > 1<<16-1 {
		return nil, invalidf("", "schema has %d nodes, compact form supports at most %d", len(s.Nodes), 1<<16-1)
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(s.Nodes)))
	for i := range s.Nodes {
		if err := encodeNode(&buf, &s.Nodes[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte(byte(n.Kind))
	switch n.Kind {
	case KindInt:
		buf.WriteByte(n.IntWidth)
		buf.WriteByte(boolByte(n.IntSigned))
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			binary.Write(b, binary.BigEndian, v.(int64))
		})
	case KindFloat:
		buf.WriteByte(n.FloatWidth)
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			binary.Write(b, binary.BigEndian, math.Float64bits(v.(float64)))
		})
	case KindBool:
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			b.WriteByte(boolByte(v.(bool)))
		})
	case KindDecimal:
		buf.WriteByte(n.Exp)
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			binary.Write(b, binary.BigEndian, v.(Decimal).Num)
		})
	case KindUUID:
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			id := v.(uuid.UUID)
			b.Write(id[:])
		})
	case KindULID:
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			id := v.(ulid.ULID)
			b.Write(id[:])
		})
	case KindDate:
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			binary.Write(b, binary.BigEndian, v.(uint64))
		})
	case KindGeo:
		buf.WriteByte(n.GeoPrecision)
		writeOptional8(buf, n.Default, func(b *bytes.Buffer, v any) {
			p := v.(GeoPoint)
			binary.Write(b, binary.BigEndian, math.Float64bits(p.Lat))
			binary.Write(b, binary.BigEndian, math.Float64bits(p.Lon))
		})
	case KindBytes, KindString:
		binary.Write(buf, binary.BigEndian, n.Size)
		if n.Default == nil {
			binary.Write(buf, binary.BigEndian, uint16(0))
			break
		}
		var data []byte
		switch v := n.Default.(type) {
		case []byte:
			data = v
		case string:
			data = []byte(v)
		}
		binary.Write(buf, binary.BigEndian, uint16(len(data)+1))
		buf.Write(data)
	case KindOption:
		if len(n.Choices) > 255 {
			return invalidf("", "option has %d choices, max is 255", len(n.Choices))
		}
		buf.WriteByte(byte(len(n.Choices)))
		for _, c := range n.Choices {
			if len(c) > 255 {
				return invalidf("", "option choice %q longer than 255 bytes", c)
			}
			buf.WriteByte(byte(len(c)))
			buf.WriteString(c)
		}
	case KindTable:
		buf.WriteByte(byte(len(n.Columns)))
		for _, c := range n.Columns {
			if len(c.Name) > 255 {
				return invalidf("", "column name %q longer than 255 bytes", c.Name)
			}
			buf.WriteByte(byte(len(c.Name)))
			buf.WriteString(c.Name)
			binary.Write(buf, binary.BigEndian, uint16(c.Child))
		}
	case KindTuple:
		buf.WriteByte(boolByte(n.TupleSorted))
		buf.WriteByte(byte(len(n.Values)))
		for _, v := range n.Values {
			binary.Write(buf, binary.BigEndian, uint16(v))
		}
	case KindList:
		binary.Write(buf, binary.BigEndian, uint16(n.Of))
	case KindMap:
		binary.Write(buf, binary.BigEndian, uint16(n.Value))
	default:
		return invalidf("", "unknown type key %d", n.Kind)
	}
	return nil
}

// writeOptional8 writes a has_default byte followed, if set, by
// whatever fixed-size payload write appends via encode.
func writeOptional8(buf *bytes.Buffer, def any, encode func(*bytes.Buffer, any)) {
	if def == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	encode(buf, def)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// ParseBytes builds a Schema from its compact byte form (the inverse
// of ToBytes). It validates the result with Validate before returning.
func ParseBytes(data []byte) (*Schema, error) {
	r := &byteReader{data: data}
	count, err := r.u16()
	if err != nil {
		return nil, invalidf("", "truncated schema bytes: %v", err)
	}
	s := &Schema{Nodes: make([]Node, count)}
	for i := 0; i < int(count); i++ {
		n, err := decodeNode(r)
		if err != nil {
			return nil, invalidf(fmt.Sprintf("nodes[%d]", i), "%v", err)
		}
		s.Nodes[i] = n
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) u8() (byte, error) {
	if r.pos+1 > len(r.data) {
		return 0, fmt.Errorf("eof")
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) u16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("eof")
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *byteReader) u64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("eof")
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("eof")
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

func decodeNode(r *byteReader) (Node, error) {
	kindB, err := r.u8()
	if err != nil {
		return Node{}, err
	}
	n := Node{Kind: TypeKey(kindB)}
	switch n.Kind {
	case KindInt:
		n.IntWidth, _ = r.u8()
		signed, err := r.u8()
		if err != nil {
			return n, err
		}
		n.IntSigned = signed != 0
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			v, err := r.u64()
			if err != nil {
				return n, err
			}
			n.Default = int64(v)
		}
	case KindFloat:
		n.FloatWidth, _ = r.u8()
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			v, err := r.u64()
			if err != nil {
				return n, err
			}
			n.Default = math.Float64frombits(v)
		}
	case KindBool:
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			b, err := r.u8()
			if err != nil {
				return n, err
			}
			n.Default = b != 0
		}
	case KindDecimal:
		n.Exp, _ = r.u8()
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			v, err := r.u64()
			if err != nil {
				return n, err
			}
			n.Default = Decimal{Num: int64(v), Exp: n.Exp}
		}
	case KindUUID:
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			raw, err := r.bytes(16)
			if err != nil {
				return n, err
			}
			var id uuid.UUID
			copy(id[:], raw)
			n.Default = id
		}
	case KindULID:
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			raw, err := r.bytes(16)
			if err != nil {
				return n, err
			}
			var id ulid.ULID
			copy(id[:], raw)
			n.Default = id
		}
	case KindDate:
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			v, err := r.u64()
			if err != nil {
				return n, err
			}
			n.Default = v
		}
	case KindGeo:
		n.GeoPrecision, _ = r.u8()
		n.Sortable = true
		if has, err := r.u8(); err != nil {
			return n, err
		} else if has != 0 {
			latB, err := r.u64()
			if err != nil {
				return n, err
			}
			lonB, err := r.u64()
			if err != nil {
				return n, err
			}
			n.Default = GeoPoint{Lat: math.Float64frombits(latB), Lon: math.Float64frombits(lonB)}
		}
	case KindBytes, KindString:
		size, err := r.u16()
		if err != nil {
			return n, err
		}
		n.Size = size
		n.Sortable = size > 0
		defLenPlus1, err := r.u16()
		if err != nil {
			return n, err
		}
		if defLenPlus1 > 0 {
			raw, err := r.bytes(int(defLenPlus1 - 1))
			if err != nil {
				return n, err
			}
			if n.Kind == KindString {
				n.Default = string(raw)
			} else {
				cp := make([]byte, len(raw))
				copy(cp, raw)
				n.Default = cp
			}
		}
	case KindOption:
		n.Sortable = true
		count, err := r.u8()
		if err != nil {
			return n, err
		}
		for i := 0; i < int(count); i++ {
			nameLen, err := r.u8()
			if err != nil {
				return n, err
			}
			nameB, err := r.bytes(int(nameLen))
			if err != nil {
				return n, err
			}
			n.Choices = append(n.Choices, string(nameB))
		}
	case KindTable:
		count, err := r.u8()
		if err != nil {
			return n, err
		}
		for i := 0; i < int(count); i++ {
			nameLen, err := r.u8()
			if err != nil {
				return n, err
			}
			nameB, err := r.bytes(int(nameLen))
			if err != nil {
				return n, err
			}
			child, err := r.u16()
			if err != nil {
				return n, err
			}
			n.Columns = append(n.Columns, Column{Name: string(nameB), Child: int(child)})
		}
	case KindTuple:
		sorted, err := r.u8()
		if err != nil {
			return n, err
		}
		n.TupleSorted = sorted != 0
		count, err := r.u8()
		if err != nil {
			return n, err
		}
		for i := 0; i < int(count); i++ {
			child, err := r.u16()
			if err != nil {
				return n, err
			}
			n.Values = append(n.Values, int(child))
		}
	case KindList:
		child, err := r.u16()
		if err != nil {
			return n, err
		}
		n.Of = int(child)
	case KindMap:
		child, err := r.u16()
		if err != nil {
			return n, err
		}
		n.Value = int(child)
	default:
		return n, fmt.Errorf("unknown type key %d", n.Kind)
	}
	return n, nil
}
