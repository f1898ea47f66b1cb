// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import "fmt"

const maxColumns = 255

// Validate walks every node of s and confirms the structural invariants
// spec.md §7 groups under SchemaInvalid: child indices in range, no
// more than 255 table columns, no duplicate column names, and a tuple
// marked sorted only over scalar-sortable children. It does not
// re-check value ranges already enforced by Node's Go field types
// (Exp uint8 is always in 0..=255, Size uint16 is always <= 65535).
func Validate(s *Schema) error {
	if len(s.Nodes) == 0 {
		return invalidf("", "schema has no nodes")
	}
	for i := range s.Nodes {
		if err := validateNode(s, i); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(s *Schema, idx int) error {
	n := &s.Nodes[idx]
	path := fmt.Sprintf("nodes[%d]", idx)

	childRef := func(child int) error {
		if child < 0 || child >= len(s.Nodes) {
			return invalidf(path, "child index %d out of range (have %d nodes)", child, len(s.Nodes))
		}
		return nil
	}

	switch n.Kind {
	case KindTable:
		if len(n.Columns) > maxColumns {
			return invalidf(path, "table has %d columns, max is %d", len(n.Columns), maxColumns)
		}
		seen := make(map[string]bool, len(n.Columns))
		for _, c := range n.Columns {
			if seen[c.Name] {
				return invalidf(path, "duplicate column name %q", c.Name)
			}
			seen[c.Name] = true
			if err := childRef(c.Child); err != nil {
				return err
			}
		}
	case KindTuple:
		for _, v := range n.Values {
			if err := childRef(v); err != nil {
				return err
			}
		}
		if n.TupleSorted {
			for _, v := range n.Values {
				if !s.Nodes[v].Sortable {
					return invalidf(path, "sorted tuple child %d (kind %s) is not a sortable scalar", v, s.Nodes[v].Kind)
				}
			}
		}
	case KindList:
		if err := childRef(n.Of); err != nil {
			return err
		}
	case KindMap:
		if err := childRef(n.Value); err != nil {
			return err
		}
	case KindOption:
		if len(n.Choices) == 0 {
			return invalidf(path, "option/enum has no choices")
		}
	case KindDecimal:
		// Exp is a uint8: the 0..=255 range is enforced by the type
		// itself once parsed; nothing further to check here.
	case KindInt:
		switch n.IntWidth {
		case 1, 2, 4, 8:
		default:
			return invalidf(path, "invalid int width %d", n.IntWidth)
		}
	case KindFloat:
		switch n.FloatWidth {
		case 4, 8:
		default:
			return invalidf(path, "invalid float width %d", n.FloatWidth)
		}
	case KindGeo:
		switch n.GeoPrecision {
		case 4, 8, 16:
		default:
			return invalidf(path, "invalid geo precision %d", n.GeoPrecision)
		}
	case KindBool, KindUUID, KindULID, KindDate, KindBytes, KindString:
		// No cross-field invariants beyond the type-enforced ranges.
	default:
		return invalidf(path, "unknown type key %d", n.Kind)
	}
	return nil
}
