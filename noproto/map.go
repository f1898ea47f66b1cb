// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// Map implements spec.md §4.6: a singly linked sequence keyed by
// UTF-8 strings, insertion order preserved and observable on
// iteration. Head: { head_addr, length }, 2·W bytes. Each node:
// { next_addr (W), key_len (W), key_bytes (key_len), value_addr (W) } —
// variably sized, unlike Table/Tuple/List's fixed-size records, since
// key length varies per entry.
//
// Grounded on other_examples/e238cd96_NLstn-go-odata__internal-
// response-ordered_map.go.go's insertion-ordered key/value walk,
// adapted from a slice-backed ordered map to an arena-linked one.
type Map struct {
	a    *arena.Arena
	s    *schema.Schema
	node *schema.Node
	head arena.Address
}

func (m *Map) w() arena.Address { return arena.Address(m.a.Width()) }

func (m *Map) readHead() (headAddr arena.Address, length int, err error) {
	headAddr, err = m.a.ReadAddress(m.head)
	if err != nil {
		return 0, 0, asArenaErr(err)
	}
	lengthAddr, err := m.a.ReadAddress(m.head + m.w())
	if err != nil {
		return 0, 0, asArenaErr(err)
	}
	return headAddr, int(lengthAddr), nil
}

func (m *Map) setHeadAddr(v arena.Address) error { return m.a.SetValueAddress(m.head, v) }
func (m *Map) setLength(n int) error             { return m.a.SetValueAddress(m.head+m.w(), arena.Address(n)) }

func (m *Map) nodeNext(nodeAddr arena.Address) (arena.Address, error) {
	v, err := m.a.ReadAddress(nodeAddr)
	return v, asArenaErr(err)
}

func (m *Map) nodeKeyLen(nodeAddr arena.Address) (int, error) {
	v, err := m.a.ReadAddress(nodeAddr + m.w())
	return int(v), asArenaErr(err)
}

func (m *Map) nodeKey(nodeAddr arena.Address, keyLen int) (string, error) {
	raw, ok := m.a.Bytes(nodeAddr+2*m.w(), keyLen)
	if !ok {
		return "", newErr(KindCorruption, "map node key at %d (len %d) past end of buffer", nodeAddr, keyLen)
	}
	return string(raw), nil
}

func (m *Map) valueSlot(nodeAddr arena.Address, keyLen int) arena.Address {
	return nodeAddr + 2*m.w() + arena.Address(keyLen)
}

func (m *Map) nodeSize(keyLen int) int { return 3*int(m.a.Width()) + keyLen }

func (m *Map) setNodeNext(nodeAddr, v arena.Address) error { return m.a.SetValueAddress(nodeAddr, v) }

// scan walks the chain looking for key. It returns the address of the
// matching node (0 if not found), the address of the last node
// visited (0 if the map is empty) for splicing a new tail entry, and
// the length-so-far observation is left to readHead.
func (m *Map) scan(key string) (nodeAddr, tailAddr arena.Address, err error) {
	headAddr, _, err := m.readHead()
	if err != nil {
		return 0, 0, err
	}
	cur := headAddr
	for cur != arena.NoAddress {
		keyLen, err := m.nodeKeyLen(cur)
		if err != nil {
			return 0, 0, err
		}
		k, err := m.nodeKey(cur, keyLen)
		if err != nil {
			return 0, 0, err
		}
		if k == key {
			return cur, tailAddr, nil
		}
		tailAddr = cur
		next, err := m.nodeNext(cur)
		if err != nil {
			return 0, 0, err
		}
		cur = next
	}
	return arena.NoAddress, tailAddr, nil
}

// Select scans for key. Duplicate keys are forbidden by construction:
// every insert goes through this select first (spec.md §4.6).
func (m *Map) Select(key any) (*Cursor, error) {
	k, ok := key.(string)
	if !ok {
		return nil, newErr(KindTypeMismatch, "map select expects a string key, got %T", key)
	}
	nodeAddr, tailAddr, err := m.scan(k)
	if err != nil {
		return nil, err
	}
	if nodeAddr == arena.NoAddress {
		return &Cursor{
			NodeIdx: m.node.Value,
			Virtual: true,
			mapCommit: &mapVirtual{
				headRecordAddr: m.head,
				tailNodeAddr:   tailAddr,
				key:            k,
			},
		}, nil
	}
	keyLen, err := m.nodeKeyLen(nodeAddr)
	if err != nil {
		return nil, err
	}
	slot := m.valueSlot(nodeAddr, keyLen)
	valueAddr, err := m.a.ReadAddress(slot)
	if err != nil {
		return nil, asArenaErr(err)
	}
	return &Cursor{NodeIdx: m.node.Value, SlotAddr: slot, ValueAddr: valueAddr}, nil
}

// CommitVirtual appends a fresh keyed node at the tail of the chain.
func (m *Map) CommitVirtual(cur *Cursor) error {
	if !cur.Virtual {
		return nil
	}
	vc := cur.mapCommit
	w := int(m.a.Width())
	keyBytes := []byte(vc.key)
	raw := make([]byte, m.nodeSize(len(keyBytes)))
	// next_addr (0, appended at the tail) already zero; key_len field:
	copy(raw[w:2*w], encodeIntBits(uint64(len(keyBytes)), w, false))
	copy(raw[2*w:2*w+len(keyBytes)], keyBytes)
	newAddr, err := m.a.Malloc(raw)
	if err != nil {
		return asArenaErr(err)
	}
	if vc.tailNodeAddr != arena.NoAddress {
		if err := m.setNodeNext(vc.tailNodeAddr, newAddr); err != nil {
			return err
		}
	} else {
		if err := m.setHeadAddr(newAddr); err != nil {
			return err
		}
	}
	_, length, err := m.readHead()
	if err != nil {
		return err
	}
	if err := m.setLength(length + 1); err != nil {
		return err
	}
	cur.Virtual = false
	cur.mapCommit = nil
	cur.SlotAddr = m.valueSlot(newAddr, len(keyBytes))
	cur.ValueAddr = arena.NoAddress
	return nil
}

// Delete unlinks the node for key and decrements length.
func (m *Map) Delete(key any) error {
	k, ok := key.(string)
	if !ok {
		return newErr(KindTypeMismatch, "map delete expects a string key, got %T", key)
	}
	headAddr, _, err := m.readHead()
	if err != nil {
		return err
	}
	var prevAddr arena.Address
	cur := headAddr
	for cur != arena.NoAddress {
		keyLen, err := m.nodeKeyLen(cur)
		if err != nil {
			return err
		}
		nodeKey, err := m.nodeKey(cur, keyLen)
		if err != nil {
			return err
		}
		next, err := m.nodeNext(cur)
		if err != nil {
			return err
		}
		if nodeKey == k {
			if prevAddr != arena.NoAddress {
				if err := m.setNodeNext(prevAddr, next); err != nil {
					return err
				}
			} else {
				if err := m.setHeadAddr(next); err != nil {
					return err
				}
			}
			_, length, err := m.readHead()
			if err != nil {
				return err
			}
			return m.setLength(length - 1)
		}
		prevAddr = cur
		cur = next
	}
	return nil
}

// Iterate visits entries in insertion order (spec.md §4.6).
func (m *Map) Iterate(fn func(key any, cur *Cursor) error) error {
	headAddr, _, err := m.readHead()
	if err != nil {
		return err
	}
	cur := headAddr
	for cur != arena.NoAddress {
		keyLen, err := m.nodeKeyLen(cur)
		if err != nil {
			return err
		}
		k, err := m.nodeKey(cur, keyLen)
		if err != nil {
			return err
		}
		slot := m.valueSlot(cur, keyLen)
		valueAddr, err := m.a.ReadAddress(slot)
		if err != nil {
			return asArenaErr(err)
		}
		c := &Cursor{NodeIdx: m.node.Value, SlotAddr: slot, ValueAddr: valueAddr}
		if err := fn(k, c); err != nil {
			return err
		}
		next, err := m.nodeNext(cur)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}
