// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import "fmt"

// InvalidError reports a malformed schema: unknown type, out-of-range
// option, duplicate column name, too many columns, and so on — the
// SchemaInvalid kind of spec.md §7. It is returned by Parse, ParseBytes
// and Validate, and by ToBytes and ToJSON when a node cannot be
// emitted.
type InvalidError struct {
	Path   string // dotted path to the offending node, e.g. "root.columns[2]"
	Reason string
}

func (e *InvalidError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: invalid: %s", e.Reason)
	}
	return fmt.Sprintf("schema: invalid at %s: %s", e.Path, e.Reason)
}

func invalidf(path, format string, args ...any) error {
	return &InvalidError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
