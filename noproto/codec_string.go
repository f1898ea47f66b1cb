// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecString is codecBytes with a string-typed Get/default instead of
// []byte — the wire layout (fixed right-pad/truncate, or variable
// length-prefixed with the same reuse-or-reallocate overwrite policy)
// is identical, so it delegates to the same helpers.
type codecString struct{}

func (codecString) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	s, ok := value.(string)
	if !ok {
		return newErr(KindTypeMismatch, "expected a string, got %T", value)
	}
	data := []byte(s)
	if node.Size > 0 {
		return setFixed(a, cur, padOrTruncate(data, int(node.Size)))
	}
	return setVarBytes(a, cur, data)
}

func (codecString) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
	if cur.IsAbsent() {
		if node.Default != nil {
			return node.Default, nil
		}
		return nil, nil
	}
	if node.Size > 0 {
		raw, err := readFixed(a, cur, int(node.Size))
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
	data, err := getVarBytes(a, cur)
	if err != nil {
		return nil, err
	}
	return string(data.([]byte)), nil
}

func (codecString) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	return codecBytes{}.Size(a, node, cur)
}

func (codecString) SortKey(node *schema.Node, value any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, newErr(KindTypeMismatch, "expected a string, got %T", value)
	}
	if node.Size > 0 {
		return padOrTruncate([]byte(s), int(node.Size)), nil
	}
	return []byte(s), nil
}
