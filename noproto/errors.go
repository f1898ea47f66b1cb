// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noproto

import (
	"errors"
	"fmt"

	"github.com/solidcoredata/noproto/arena"
)

// Kind identifies which of spec.md §7's error categories an Error
// belongs to, so callers can branch with errors.As without string
// matching — the same shape the teacher threads a single *.err field
// through a builder for (ts/writer.go's Writer.err), generalized to a
// closed set of kinds instead of an opaque error.
type Kind int

const (
	KindUnknown Kind = iota
	KindSchemaInvalid
	KindTooLarge
	KindCapacityExceeded
	KindUnknownField
	KindOutOfBounds
	KindTypeMismatch
	KindCorruption
)

func (k Kind) String() string {
	switch k {
	case KindSchemaInvalid:
		return "SchemaInvalid"
	case KindTooLarge:
		return "TooLarge"
	case KindCapacityExceeded:
		return "CapacityExceeded"
	case KindUnknownField:
		return "UnknownField"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindCorruption:
		return "Corruption"
	default:
		return "Unknown"
	}
}

// Error is the one error type the steady-state API returns; Kind tells
// the caller which of spec.md §7's categories it is.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("noproto: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("noproto: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// asArenaErr maps a lower-layer arena error onto the §7 taxonomy.
func asArenaErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, arena.ErrCapacityExceeded) {
		return wrapErr(KindCapacityExceeded, err, "arena cannot grow further at this address width")
	}
	return wrapErr(KindCorruption, err, "arena read/write failed")
}
