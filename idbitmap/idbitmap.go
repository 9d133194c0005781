// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package idbitmap - fixed capacity allocator of small integer
// identifiers
//
// Note: not thread safe
package idbitmap

import (
	"math/bits"

	"github.com/bitmark-inc/rserpoold/fault"
)

const wordBits = 64

// Bitmap - one bit per identifier, set when in use
type Bitmap struct {
	entries   int
	available int
	words     []uint64
}

// New - create a bitmap for identifiers 0 … entries-1
func New(entries int) *Bitmap {
	if entries < 1 {
		fault.Panicf("idbitmap: invalid entries: %d", entries)
	}
	return &Bitmap{
		entries:   entries,
		available: entries,
		words:     make([]uint64, (entries+wordBits-1)/wordBits),
	}
}

// Entries - total capacity
func (b *Bitmap) Entries() int {
	return b.entries
}

// Available - number of free identifiers
func (b *Bitmap) Available() int {
	return b.available
}

// Allocate - take the lowest free identifier
//
// returns false if all identifiers are in use
func (b *Bitmap) Allocate() (int, bool) {
	if 0 == b.available {
		return -1, false
	}
	for i, w := range b.words {
		if ^uint64(0) == w {
			continue
		}
		id := i*wordBits + bits.TrailingZeros64(^w)
		if id >= b.entries {
			break
		}
		b.words[i] |= 1 << uint(id%wordBits)
		b.available -= 1
		return id, true
	}
	return -1, false
}

// AllocateSpecific - take a particular identifier
//
// returns false if it is already in use
func (b *Bitmap) AllocateSpecific(id int) bool {
	b.check(id)
	i, mask := id/wordBits, uint64(1)<<uint(id%wordBits)
	if 0 != b.words[i]&mask {
		return false
	}
	b.words[i] |= mask
	b.available -= 1
	return true
}

// IsAllocated - true if the identifier is in use
func (b *Bitmap) IsAllocated(id int) bool {
	b.check(id)
	return 0 != b.words[id/wordBits]&(uint64(1)<<uint(id%wordBits))
}

// Free - release an identifier, which must be in use
func (b *Bitmap) Free(id int) {
	b.check(id)
	i, mask := id/wordBits, uint64(1)<<uint(id%wordBits)
	if 0 == b.words[i]&mask {
		fault.Panicf("idbitmap: free of unallocated identifier: %d", id)
	}
	b.words[i] &^= mask
	b.available += 1
}

func (b *Bitmap) check(id int) {
	if id < 0 || id >= b.entries {
		fault.Panicf("idbitmap: identifier: %d out of range 0…%d", id, b.entries-1)
	}
}
