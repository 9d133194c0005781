// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package checksum - order independent 16 bit one's complement
// checksum used by registrars to compare handlespace contents
//
// Partial sums are held unfolded in 32 bits so that contributions can
// be added and subtracted in any order.  Only Finish folds the carry
// and complements.
package checksum

import (
	"encoding/binary"
)

// Accumulator - unfolded running sum
type Accumulator uint32

// Initial - the sum of nothing
const Initial Accumulator = 0

// Compute - add the 16 bit words of buffer to a sum
//
// words are read big endian so the result does not depend on the host,
// an odd trailing byte is padded with zero
func Compute(sum Accumulator, buffer []byte) Accumulator {
	n := len(buffer) &^ 1
	for i := 0; i < n; i += 2 {
		sum += Accumulator(binary.BigEndian.Uint16(buffer[i:]))
	}
	if n != len(buffer) {
		sum += Accumulator(buffer[n]) << 8
	}
	return sum
}

// Add - combine two partial sums
func (a Accumulator) Add(b Accumulator) Accumulator {
	return a + b
}

// Sub - remove a previously added partial sum
func (a Accumulator) Sub(b Accumulator) Accumulator {
	return a - b
}

// Finish - fold the carries and complement
func (a Accumulator) Finish() uint16 {
	sum := uint32(a)
	for 0 != sum>>16 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
