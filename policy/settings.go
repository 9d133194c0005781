// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
)

// Type - policy identifier as carried in a policy parameter
type Type uint32

// policy types
const (
	Undefined                              Type = 0x00000000
	RoundRobin                             Type = 0x00000001
	WeightedRoundRobin                     Type = 0x00000002
	Random                                 Type = 0x00000003
	WeightedRandom                         Type = 0x00000004
	Priority                               Type = 0x00000005
	LeastUsed                              Type = 0x40000001
	LeastUsedDegradation                   Type = 0x40000002
	PriorityLeastUsed                      Type = 0x40000003
	RandomizedLeastUsed                    Type = 0x40000004
	RandomizedPriorityLeastUsed            Type = 0xb0001001
	RandomizedLeastUsedDegradation         Type = 0xb0001002
	PriorityLeastUsedDegradation           Type = 0xb0001003
	RandomizedPriorityLeastUsedDegradation Type = 0xb0001004
	WeightedRandomDPF                      Type = 0xb0002001
	LeastUsedDPF                           Type = 0xb0002002
	LeastUsedDegradationDPF                Type = 0xb0002003
	PriorityLeastUsedDPF                   Type = 0xb0002004
	PriorityLeastUsedDegradationDPF        Type = 0xb0002005
)

// upper limits of the fixed point parameters
const (
	MaxWeight          = 0xffffffff
	MaxLoad            = 0xffffffff
	MaxLoadDegradation = 0xffffffff
	MaxLoadDPF         = 0xffffffff
	MaxWeightDPF       = 0xffffffff
)

// String - policy name, or the hex code if not known
func (t Type) String() string {
	if p := ByType(t); nil != p {
		return p.Name
	}
	return fmt.Sprintf("$%08x", uint32(t))
}

// IsAdaptive - true for policies whose order depends on reported load
func (t Type) IsAdaptive() bool {
	switch t {
	case LeastUsed, LeastUsedDPF, LeastUsedDegradation, LeastUsedDegradationDPF,
		PriorityLeastUsed, PriorityLeastUsedDegradation,
		PriorityLeastUsedDPF, PriorityLeastUsedDegradationDPF,
		RandomizedLeastUsed, RandomizedLeastUsedDegradation,
		RandomizedPriorityLeastUsed, RandomizedPriorityLeastUsedDegradation:
		return true
	}
	return false
}

// Settings - the policy parameters a pool element registers with
type Settings struct {
	Type            Type   `json:"type"`
	Weight          uint32 `json:"weight"`
	Load            uint32 `json:"load"`
	LoadDegradation uint32 `json:"load_degradation"`
	LoadDPF         uint32 `json:"load_dpf"`
	WeightDPF       uint32 `json:"weight_dpf"`
	Distance        uint32 `json:"distance"`
}

// SameParameters - true if every parameter apart from the type matches
func (s Settings) SameParameters(o Settings) bool {
	return s.Weight == o.Weight &&
		s.Load == o.Load &&
		s.LoadDegradation == o.LoadDegradation &&
		s.LoadDPF == o.LoadDPF &&
		s.WeightDPF == o.WeightDPF &&
		s.Distance == o.Distance
}

// IsValid - parameters are within their ranges
//
// every uint32 is in range for the current limits, so only the type
// needs checking
func (s Settings) IsValid() bool {
	return nil != ByType(s.Type)
}

// String - description for logs and dumps
func (s Settings) String() string {
	return fmt.Sprintf("t=%s [w=%d l=%s ldeg=%s ldpf=$%08x wdpf=$%08x dist=%d]",
		s.Type, s.Weight,
		percent(s.Load, MaxLoad), percent(s.LoadDegradation, MaxLoadDegradation),
		s.LoadDPF, s.WeightDPF, s.Distance)
}

// integer percentage with three decimals
func percent(v uint32, max uint64) string {
	thousandths := (uint64(v)*100000 + max/2) / max
	return fmt.Sprintf("%d.%03d%%", thousandths/1000, thousandths%1000)
}

// LoadFromPercent - convert a percentage in thousandths to the fixed
// point load scale
func LoadFromPercent(thousandths uint32) uint32 {
	if thousandths >= 100000 {
		return MaxLoad
	}
	return uint32((uint64(thousandths)*MaxLoad + 50000) / 100000)
}
