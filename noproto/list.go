// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"encoding/binary"

	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// List implements spec.md §4.5: a linked sequence of nodes chained in
// ascending order of their explicit integer index, whatever order they
// were allocated in. The head record — { head_addr, tail_addr, length },
// 3·W bytes — lives at l.head; each node — { next_addr, prev_addr,
// index (2 bytes BE), value_addr }, 3·W+2 bytes — is allocated once,
// on first write to that index, and never moves.
//
// Grounded on other_examples/6e7b965b_bianap-m3__src-dbnode-storage-
// series-buffer.go.go's head/tail/length linked-block bookkeeping,
// adapted from a time-series ring buffer to an address-linked sparse
// sequence.
type List struct {
	a    *arena.Arena
	s    *schema.Schema
	node *schema.Node
	head arena.Address
}

func (l *List) w() arena.Address { return arena.Address(l.a.Width()) }

// nodeSize is the fixed footprint of one list node: next, prev
// (W bytes each), index (2 bytes), value (W bytes).
func (l *List) nodeSize() int { return 3*int(l.a.Width()) + 2 }

func (l *List) readHead() (headAddr, tailAddr arena.Address, length int, err error) {
	w := l.w()
	headAddr, err = l.a.ReadAddress(l.head)
	if err != nil {
		return 0, 0, 0, asArenaErr(err)
	}
	tailAddr, err = l.a.ReadAddress(l.head + w)
	if err != nil {
		return 0, 0, 0, asArenaErr(err)
	}
	lengthAddr, err := l.a.ReadAddress(l.head + 2*w)
	if err != nil {
		return 0, 0, 0, asArenaErr(err)
	}
	return headAddr, tailAddr, int(lengthAddr), nil
}

func (l *List) setHeadAddr(v arena.Address) error { return l.a.SetValueAddress(l.head, v) }
func (l *List) setTailAddr(v arena.Address) error { return l.a.SetValueAddress(l.head+l.w(), v) }
func (l *List) setLength(n int) error             { return l.a.SetValueAddress(l.head+2*l.w(), arena.Address(n)) }

func (l *List) nodeNext(nodeAddr arena.Address) (arena.Address, error) {
	v, err := l.a.ReadAddress(nodeAddr)
	return v, asArenaErr(err)
}

func (l *List) nodePrev(nodeAddr arena.Address) (arena.Address, error) {
	v, err := l.a.ReadAddress(nodeAddr + l.w())
	return v, asArenaErr(err)
}

func (l *List) nodeIndex(nodeAddr arena.Address) (uint16, error) {
	raw, ok := l.a.Bytes(nodeAddr+2*l.w(), 2)
	if !ok {
		return 0, newErr(KindCorruption, "list node index at %d past end of buffer", nodeAddr)
	}
	return binary.BigEndian.Uint16(raw), nil
}

func (l *List) valueSlot(nodeAddr arena.Address) arena.Address {
	return nodeAddr + 2*l.w() + 2
}

func (l *List) setNodeNext(nodeAddr, v arena.Address) error { return l.a.SetValueAddress(nodeAddr, v) }
func (l *List) setNodePrev(nodeAddr, v arena.Address) error {
	return l.a.SetValueAddress(nodeAddr+l.w(), v)
}

// Select walks the chain for the node with index == i. If found, it
// returns a non-virtual cursor over that node's value slot. If no
// node carries that index, it returns a virtual cursor holding the
// splice point (the neighbors it would be inserted between).
func (l *List) Select(key any) (*Cursor, error) {
	i, err := toIndex(key)
	if err != nil {
		return nil, err
	}
	if i < 0 || i > 0xFFFF {
		return nil, newErr(KindOutOfBounds, "list index %d out of range (0..65535)", i)
	}
	headAddr, _, _, err := l.readHead()
	if err != nil {
		return nil, err
	}
	// Forward walk honoring ascending index; spec.md §4.5 allows
	// choosing the shorter of a forward or backward walk as a
	// performance optimization — this implementation always walks
	// forward from head, which is correct but not optimal for indices
	// near the tail of a long list.
	var prevAddr arena.Address
	cur := headAddr
	for cur != arena.NoAddress {
		idx, err := l.nodeIndex(cur)
		if err != nil {
			return nil, err
		}
		if int(idx) == i {
			valueAddr, err := l.a.ReadAddress(l.valueSlot(cur))
			if err != nil {
				return nil, asArenaErr(err)
			}
			return &Cursor{NodeIdx: l.node.Of, SlotAddr: l.valueSlot(cur), ValueAddr: valueAddr}, nil
		}
		if int(idx) > i {
			break
		}
		next, err := l.nodeNext(cur)
		if err != nil {
			return nil, err
		}
		prevAddr = cur
		cur = next
	}
	return &Cursor{
		NodeIdx: l.node.Of,
		Virtual: true,
		listCommit: &listVirtual{
			headRecordAddr: l.head,
			prevNodeAddr:   prevAddr,
			nextNodeAddr:   cur,
			index:          uint16(i),
		},
	}, nil
}

// CommitVirtual appends a fresh node, splices it between the recorded
// neighbors, and updates length and head/tail as needed (spec.md
// §4.5 "set on virtual cursor").
func (l *List) CommitVirtual(cur *Cursor) error {
	if !cur.Virtual {
		return nil
	}
	vc := cur.listCommit
	raw := make([]byte, l.nodeSize())
	newAddr, err := l.a.Malloc(raw)
	if err != nil {
		return asArenaErr(err)
	}
	w := int(l.a.Width())
	binary.BigEndian.PutUint16(l.a.WriteBytes()[newAddr+arena.Address(2*w):], vc.index)
	if err := l.setNodeNext(newAddr, vc.nextNodeAddr); err != nil {
		return err
	}
	if err := l.setNodePrev(newAddr, vc.prevNodeAddr); err != nil {
		return err
	}
	if vc.prevNodeAddr != arena.NoAddress {
		if err := l.setNodeNext(vc.prevNodeAddr, newAddr); err != nil {
			return err
		}
	} else {
		if err := l.setHeadAddr(newAddr); err != nil {
			return err
		}
	}
	if vc.nextNodeAddr != arena.NoAddress {
		if err := l.setNodePrev(vc.nextNodeAddr, newAddr); err != nil {
			return err
		}
	} else {
		if err := l.setTailAddr(newAddr); err != nil {
			return err
		}
	}
	_, _, length, err := l.readHead()
	if err != nil {
		return err
	}
	if err := l.setLength(length + 1); err != nil {
		return err
	}
	cur.Virtual = false
	cur.listCommit = nil
	cur.SlotAddr = l.valueSlot(newAddr)
	cur.ValueAddr = arena.NoAddress
	return nil
}

// Delete unlinks the node at index i and decrements length. Its bytes
// remain resident until compaction (spec.md §3 "Lifecycle").
func (l *List) Delete(key any) error {
	cur, err := l.Select(key)
	if err != nil {
		return err
	}
	if cur.Virtual {
		return nil
	}
	w := arena.Address(l.a.Width())
	nodeAddr := cur.SlotAddr - 2*w - 2
	prevAddr, err := l.nodePrev(nodeAddr)
	if err != nil {
		return err
	}
	nextAddr, err := l.nodeNext(nodeAddr)
	if err != nil {
		return err
	}
	if prevAddr != arena.NoAddress {
		if err := l.setNodeNext(prevAddr, nextAddr); err != nil {
			return err
		}
	} else {
		if err := l.setHeadAddr(nextAddr); err != nil {
			return err
		}
	}
	if nextAddr != arena.NoAddress {
		if err := l.setNodePrev(nextAddr, prevAddr); err != nil {
			return err
		}
	} else {
		if err := l.setTailAddr(prevAddr); err != nil {
			return err
		}
	}
	_, _, length, err := l.readHead()
	if err != nil {
		return err
	}
	return l.setLength(length - 1)
}

// Iterate visits nodes in ascending index order, which CommitVirtual
// maintains by splicing each new node between its neighbors; this is
// not necessarily arena allocation order.
func (l *List) Iterate(fn func(key any, cur *Cursor) error) error {
	headAddr, _, _, err := l.readHead()
	if err != nil {
		return err
	}
	cur := headAddr
	for cur != arena.NoAddress {
		idx, err := l.nodeIndex(cur)
		if err != nil {
			return err
		}
		valueAddr, err := l.a.ReadAddress(l.valueSlot(cur))
		if err != nil {
			return asArenaErr(err)
		}
		c := &Cursor{NodeIdx: l.node.Of, SlotAddr: l.valueSlot(cur), ValueAddr: valueAddr}
		if err := fn(int(idx), c); err != nil {
			return err
		}
		next, err := l.nodeNext(cur)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}
