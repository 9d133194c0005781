// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"math/bits"
)

func compareUint64(a uint64, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func bySeqNumber(a *State, b *State) int {
	return compareUint64(a.SeqNumber, b.SeqNumber)
}

func byIdentifier(a *State, b *State) int {
	return compareUint64(uint64(a.Identifier), uint64(b.Identifier))
}

// ascending by a computed key, oldest sequence number first on a tie
func sortBy(key func(s *State) uint64) func(a *State, b *State) int {
	return func(a *State, b *State) int {
		if c := compareUint64(key(a), key(b)); 0 != c {
			return c
		}
		return bySeqNumber(a, b)
	}
}

// highest weight first
func priorityCompare(a *State, b *State) int {
	if c := compareUint64(uint64(b.Settings.Weight), uint64(a.Settings.Weight)); 0 != c {
		return c
	}
	return bySeqNumber(a, b)
}

func weightedRoundRobinCompare(a *State, b *State) int {
	if c := compareUint64(a.RoundCounter, b.RoundCounter); 0 != c {
		return c
	}
	if c := compareUint64(a.VirtualCounter, b.VirtualCounter); 0 != c {
		return c
	}
	return bySeqNumber(a, b)
}

// a new element joins the current round with a full quota
func weightedRoundRobinInitialise(s *State, first *State) {
	s.RoundCounter = 0
	if nil != first {
		s.RoundCounter = first.RoundCounter
	}
	s.VirtualCounter = uint64(s.Settings.Weight)
}

// each selection uses one unit of the quota, an exhausted element
// moves to the next round
func weightedRoundRobinUpdate(s *State) {
	if s.VirtualCounter > 1 {
		s.VirtualCounter -= 1
	} else {
		s.RoundCounter += 1
		s.VirtualCounter = uint64(s.Settings.Weight)
	}
}

func degrade(s *State) {
	s.Degradation = uint32(saturatedSum(uint64(s.Degradation), uint64(s.Settings.LoadDegradation)))
}

// sum clamped to the load scale
func saturatedSum(values ...uint64) uint64 {
	sum := uint64(0)
	for _, v := range values {
		sum += v
		if sum > MaxLoad {
			return MaxLoad
		}
	}
	return sum
}

// distance penalty in load units: distance × dpf/MAX × MAX
func penalty(distance uint32, dpf uint32) uint64 {
	return uint64(distance) * uint64(dpf)
}

// base less the subtrahends, clamped to [1, MaxWeight] so that a busy
// element still has a small chance of selection
func valueFraction(base uint32, subtrahends ...uint32) uint64 {
	v := int64(base)
	for _, s := range subtrahends {
		v -= int64(s)
	}
	switch {
	case v < 1:
		return 1
	case v > MaxWeight:
		return MaxWeight
	}
	return uint64(v)
}

// weight reduced by weight × distance × dpf/MAX, rounded to nearest
func weightedRandomDPFValue(s *State) uint64 {
	w := uint64(s.Settings.Weight)
	hi, lo := bits.Mul64(w*uint64(s.Settings.Distance), uint64(s.Settings.WeightDPF))

	// the product is below MAX × 2^64 so the quotient fits
	lo, carry := bits.Add64(lo, MaxWeightDPF/2, 0)
	hi += carry
	reduction, _ := bits.Div64(hi, lo, MaxWeightDPF)

	if reduction > w {
		return 1
	}
	return w - reduction
}
