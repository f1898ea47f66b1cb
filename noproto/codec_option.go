// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"github.com/solidcoredata/noproto/arena"
	"github.com/solidcoredata/noproto/schema"
)

// codecOption implements the 1-byte option/enum scalar: a 1-based
// index into node.Choices, with 0 reserved for "unset" (spec.md §4.2).
type codecOption struct{}

func (codecOption) Set(a *arena.Arena, node *schema.Node, cur *Cursor, value any) error {
	idx, err := toChoiceIndex(node, value)
	if err != nil {
		return err
	}
	return setFixed(a, cur, []byte{byte(idx + 1)})
}

func (codecOption) Get(a *arena.Arena, node *schema.Node, cur *Cursor) (any, error) {
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
	if raw[0] == 0 {
		return nil, nil
	}
	idx := int(raw[0]) - 1
	if idx < 0 || idx >= len(node.Choices) {
		return nil, newErr(KindCorruption, "option index %d out of range for %d choices", idx, len(node.Choices))
	}
	return node.Choices[idx], nil
}

func (codecOption) Size(a *arena.Arena, node *schema.Node, cur *Cursor) (int, error) {
	if cur.IsAbsent() {
		return 0, nil
	}
	return 1, nil
}

func (codecOption) SortKey(node *schema.Node, value any) ([]byte, error) {
	idx, err := toChoiceIndex(node, value)
	if err != nil {
		return nil, err
	}
	return []byte{byte(idx + 1)}, nil
}

func toChoiceIndex(node *schema.Node, value any) (int, error) {
	name, ok := value.(string)
	if !ok {
		return 0, newErr(KindTypeMismatch, "expected a string choice, got %T", value)
	}
	for i, c := range node.Choices {
		if c == name {
			return i, nil
		}
	}
	return 0, newErr(KindTypeMismatch, "%q is not a declared choice", name)
}
