// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package poolhandle - the name of a pool
package poolhandle

import (
	"fmt"
	"strings"

	"github.com/bitmark-inc/rserpoold/fault"
)

// MaxSize - longest permitted handle in bytes
const MaxSize = 32

// Handle - immutable pool name of 1 to MaxSize arbitrary bytes
type Handle struct {
	s string
}

// New - create a handle from a copy of the bytes
func New(b []byte) (Handle, error) {
	return FromString(string(b))
}

// FromString - create a handle from a string
func FromString(s string) (Handle, error) {
	if 0 == len(s) || len(s) > MaxSize {
		return Handle{}, fault.ErrInvalidPoolHandle
	}
	return Handle{s: s}, nil
}

// IsValid - false for the zero Handle
func (h Handle) IsValid() bool {
	return 0 != len(h.s)
}

// Len - size in bytes
func (h Handle) Len() int {
	return len(h.s)
}

// Bytes - a copy of the raw bytes
func (h Handle) Bytes() []byte {
	return []byte(h.s)
}

// Compare - byte-wise, a prefix sorts before the longer handle
func (h Handle) Compare(o Handle) int {
	return strings.Compare(h.s, o.s)
}

// String - printable form, non-printing bytes appear as {xx}
func (h Handle) String() string {
	var b strings.Builder
	for i := 0; i < len(h.s); i += 1 {
		c := h.s[i]
		if c >= 0x20 && c < 0x7f && '{' != c {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "{%02x}", c)
		}
	}
	return b.String()
}
