// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arena implements the single contiguous growable byte vector
// that backs a NoProto buffer: the append-mostly "B" of the
// specification, together with its address-width mode and the
// fixed-width, big-endian reads and writes every higher layer builds on.
//
// An Arena never frees. Bytes that become unreachable (an overwritten
// variable-length value, a deleted collection node) stay resident until
// a caller copies the live set into a fresh Arena (see the noproto
// package's Buffer.Compact).
package arena

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Address is a byte offset into an Arena. Zero is the "none" sentinel:
// it never identifies an allocated value.
type Address uint64

// NoAddress is the sentinel meaning "absent" everywhere an Address is
// stored inside a buffer.
const NoAddress Address = 0

// Width is the uniform pointer size, in bytes, used for every slot,
// next-pointer and length prefix inside a buffer built on this Arena.
// It is fixed for the lifetime of the Arena.
type Width uint8

// The three address widths the format supports.
const (
	Width1 Width = 1
	Width2 Width = 2
	Width4 Width = 4
)

// Valid reports whether w is one of Width1, Width2 or Width4.
func (w Width) Valid() bool {
	switch w {
	case Width1, Width2, Width4:
		return true
	}
	return false
}

// Max returns the largest address a width of w bytes can represent:
// 2^(8w) - 1.
func (w Width) Max() uint64 {
	switch w {
	case Width1:
		return 1<<8 - 1
	case Width2:
		return 1<<16 - 1
	case Width4:
		return 1<<32 - 1
	}
	return 0
}

// ErrCapacityExceeded is returned by Malloc/MallocBorrow/SetValueAddress
// when the operation would grow the Arena, or address a position inside
// it, beyond what the current Width can represent.
var ErrCapacityExceeded = errors.New("arena: capacity exceeded")

// Arena owns the growable byte vector and the address-width mode
// chosen when it was created.
type Arena struct {
	width Width
	buf   []byte
	log   *zap.Logger
}

// New creates an empty Arena with the given address width. log may be
// nil, in which case a no-op logger is used.
func New(width Width, log *zap.Logger) (*Arena, error) {
	if !width.Valid() {
		return nil, fmt.Errorf("arena: invalid address width %d", width)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Arena{width: width, log: log}, nil
}

// Width returns the Arena's fixed address width.
func (a *Arena) Width() Width { return a.width }

// Len returns the current size of the backing byte vector.
func (a *Arena) Len() int { return len(a.buf) }

// ReadBytes returns the Arena's backing storage for read-only access.
// The caller must not retain the slice across a call that mutates the
// Arena (Malloc/MallocBorrow/SetValueAddress/WriteBytes): append may
// reallocate the backing array, and any retained slice would then alias
// stale storage. The engine itself guarantees no concurrent writers
// (spec.md §5); that guarantee does not extend past this call.
func (a *Arena) ReadBytes() []byte { return a.buf }

// WriteBytes returns the Arena's backing storage for in-place mutation.
// Same aliasing caveat as ReadBytes.
func (a *Arena) WriteBytes() []byte { return a.buf }

// GetNBytes reads n bytes (n must be 1, 2, 4 or 8) starting at addr. It
// returns ok=false, rather than an error, when addr+n exceeds the
// Arena's current size — callers at the codec layer treat that as
// Corruption, callers doing existence probes treat it as absence.
func (a *Arena) GetNBytes(addr Address, n int) (out []byte, ok bool) {
	switch n {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("arena: unsupported fixed width %d", n))
	}
	end := uint64(addr) + uint64(n)
	if end > uint64(len(a.buf)) {
		return nil, false
	}
	return a.buf[addr:end], true
}

// Bytes reads an arbitrary-length slice of n bytes starting at addr.
// Unlike GetNBytes (which mirrors spec.md §4.1's get_N_bytes for
// N∈{1,2,4,8}), n is unconstrained: wider fixed-width scalars (UUID,
// ULID, geo16) and variable-length payloads read through here.
func (a *Arena) Bytes(addr Address, n int) (out []byte, ok bool) {
	end := uint64(addr) + uint64(n)
	if end > uint64(len(a.buf)) {
		return nil, false
	}
	return a.buf[addr:end], true
}

// ReadAddress reads a Width-byte big-endian address at addr.
func (a *Arena) ReadAddress(addr Address) (Address, error) {
	raw, ok := a.GetNBytes(addr, int(a.width))
	if !ok {
		return 0, fmt.Errorf("arena: read address at %d past end of buffer (len=%d)", addr, len(a.buf))
	}
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	return Address(v), nil
}

// SetValueAddress writes value as a Width-byte big-endian pointer at
// slotAddr. slotAddr must already lie within the Arena (the slot itself
// is allocated by the caller, e.g. a collection's spine or head record);
// value must fit in Width bytes.
func (a *Arena) SetValueAddress(slotAddr Address, value Address) error {
	if uint64(value) > a.width.Max() {
		return ErrCapacityExceeded
	}
	end := uint64(slotAddr) + uint64(a.width)
	if end > uint64(len(a.buf)) {
		return fmt.Errorf("arena: slot at %d past end of buffer (len=%d)", slotAddr, len(a.buf))
	}
	dst := a.buf[slotAddr:end]
	v := uint64(value)
	for i := int(a.width) - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
	return nil
}

// Malloc appends data to the Arena, taking ownership of it: the caller
// must not mutate data afterwards. It returns the start address of the
// newly appended region, or ErrCapacityExceeded if the Arena would grow
// past what Width can address.
func (a *Arena) Malloc(data []byte) (Address, error) {
	return a.malloc(data)
}

// MallocBorrow appends a copy of data to the Arena; the caller retains
// ownership of data and may reuse it immediately after the call
// returns. Same failure mode as Malloc.
func (a *Arena) MallocBorrow(data []byte) (Address, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	return a.malloc(cp)
}

func (a *Arena) malloc(data []byte) (Address, error) {
	newLen := uint64(len(a.buf)) + uint64(len(data))
	if newLen > a.width.Max() {
		a.log.Warn("arena malloc would exceed address width capacity",
			zap.Uint8("width_bytes", uint8(a.width)),
			zap.Uint64("requested_len", newLen),
			zap.Uint64("max_len", a.width.Max()),
		)
		return 0, ErrCapacityExceeded
	}
	start := Address(len(a.buf))
	a.buf = append(a.buf, data...)
	a.log.Debug("arena malloc",
		zap.Uint64("start", uint64(start)),
		zap.Int("size", len(data)),
		zap.Int("arena_len", len(a.buf)),
	)
	return start, nil
}

// Reset replaces the Arena's backing storage wholesale. Used by
// compaction to swap in a freshly built arena's bytes after copying the
// live set (see the noproto package's Buffer.Compact); not a
// general-purpose mutator.
func (a *Arena) Reset(buf []byte, width Width) error {
	if !width.Valid() {
		return fmt.Errorf("arena: invalid address width %d", width)
	}
	if uint64(len(buf)) > width.Max() {
		return ErrCapacityExceeded
	}
	a.buf = buf
	a.width = width
	return nil
}

// FromBytes wraps an existing byte slice (e.g. read from disk or the
// network by the out-of-scope façade) as an Arena with the given
// width. buf is used as the arena contents as-is, so it must not
// include the leading width tag of spec.md §6.3: the caller reads that
// byte and passes the remainder.
func FromBytes(width Width, buf []byte, log *zap.Logger) (*Arena, error) {
	a, err := New(width, log)
	if err != nil {
		return nil, err
	}
	a.buf = buf
	return a, nil
}
