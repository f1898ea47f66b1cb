// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecBool implements the 1-byte boolean scalar: 0x00 false, 0x01 true.
type codecBool struct{}

func (codecBool) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	b, ok := value.(bool)
	if !ok {
		return newErr(KindTypeMismatch, "expected a bool, got %T", value)
	}
	return setFixed(a, cur, []byte{boolByte(b)})
}

func (codecBool) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	raw, err := readFixed(a, cur, 1)
	if err != nil {
		return nil, err
	}
	return raw[0] != 0, nil
}

func (codecBool) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return 1, nil
}

func (codecBool) SortKey(node *schema.Node, value any) ([]byte, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, newErr(KindTypeMismatch, "expected a bool, got %T", value)
	}
	return []byte{boolByte(b)}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
