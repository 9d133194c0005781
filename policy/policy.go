// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

// Kind - how a pool of this policy is selected from
type Kind int

// selection kinds
const (
	SortingOrder Kind = iota + 1
	ValueTree
)

// State - per element data that policies read and update
type State struct {
	Identifier       uint32
	Settings         Settings
	SeqNumber        uint64
	RoundCounter     uint64
	VirtualCounter   uint64
	Degradation      uint32
	SelectionCounter uint64
}

// Policy - one selection policy
type Policy struct {
	Type                Type
	Name                string
	DefaultMaxIncrement int
	Kind                Kind

	compare    func(a *State, b *State) int
	value      func(s *State) uint64
	initialise func(s *State, first *State)
	update     func(s *State)
}

// Compare - selection order of two elements of the same pool
func (p *Policy) Compare(a *State, b *State) int {
	return p.compare(a, b)
}

// Value - selection weight of an element, zero for sorting order
// policies
func (p *Policy) Value(s *State) uint64 {
	if nil == p.value {
		return 0
	}
	return p.value(s)
}

// Initialise - set the policy counters of an element entering a pool
//
// first is the element currently at the head of the selection, or nil
func (p *Policy) Initialise(s *State, first *State) {
	if nil != p.initialise {
		p.initialise(s, first)
	}
}

// Update - adjust the counters of an element that has just been
// selected
func (p *Policy) Update(s *State) {
	if nil != p.update {
		p.update(s)
	}
}

var policies = []*Policy{
	{
		Type: RoundRobin, Name: "RoundRobin",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: bySeqNumber,
	},
	{
		Type: WeightedRoundRobin, Name: "WeightedRoundRobin",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare:    weightedRoundRobinCompare,
		initialise: weightedRoundRobinInitialise,
		update:     weightedRoundRobinUpdate,
	},
	{
		Type: Random, Name: "Random",
		DefaultMaxIncrement: 0, Kind: ValueTree,
		compare: byIdentifier,
		value:   func(*State) uint64 { return 1 },
	},
	{
		Type: WeightedRandom, Name: "WeightedRandom",
		DefaultMaxIncrement: 0, Kind: ValueTree,
		compare: byIdentifier,
		value:   func(s *State) uint64 { return uint64(s.Settings.Weight) },
	},
	{
		Type: WeightedRandomDPF, Name: "WeightedRandomDPF",
		DefaultMaxIncrement: 0, Kind: ValueTree,
		compare: byIdentifier,
		value:   weightedRandomDPFValue,
	},
	{
		Type: Priority, Name: "Priority",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: priorityCompare,
	},
	{
		Type: LeastUsed, Name: "LeastUsed",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: sortBy(func(s *State) uint64 { return uint64(s.Settings.Load) }),
	},
	{
		Type: LeastUsedDPF, Name: "LeastUsedDPF",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: sortBy(func(s *State) uint64 {
			return saturatedSum(uint64(s.Settings.Load), penalty(s.Settings.Distance, s.Settings.LoadDPF))
		}),
	},
	{
		Type: LeastUsedDegradation, Name: "LeastUsedDegradation",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: sortBy(func(s *State) uint64 {
			return saturatedSum(uint64(s.Settings.Load), uint64(s.Degradation))
		}),
		update: degrade,
	},
	{
		Type: LeastUsedDegradationDPF, Name: "LeastUsedDegradationDPF",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: sortBy(func(s *State) uint64 {
			return saturatedSum(uint64(s.Settings.Load), uint64(s.Degradation), penalty(s.Settings.Distance, s.Settings.LoadDPF))
		}),
		update: degrade,
	},
	{
		Type: PriorityLeastUsed, Name: "PriorityLeastUsed",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: sortBy(func(s *State) uint64 {
			return saturatedSum(uint64(s.Settings.Load), uint64(s.Settings.LoadDegradation))
		}),
	},
	{
		Type: PriorityLeastUsedDegradation, Name: "PriorityLeastUsedDegradation",
		DefaultMaxIncrement: 1, Kind: SortingOrder,
		compare: sortBy(func(s *State) uint64 {
			return saturatedSum(uint64(s.Settings.Load), uint64(s.Settings.LoadDegradation), uint64(s.Degradation))
		}),
		update: degrade,
	},
	{
		Type: RandomizedLeastUsed, Name: "RandomizedLeastUsed",
		DefaultMaxIncrement: 1, Kind: ValueTree,
		compare: byIdentifier,
		value: func(s *State) uint64 {
			return valueFraction(MaxLoad, s.Settings.Load)
		},
	},
	{
		Type: RandomizedLeastUsedDegradation, Name: "RandomizedLeastUsedDegradation",
		DefaultMaxIncrement: 1, Kind: ValueTree,
		compare: byIdentifier,
		value: func(s *State) uint64 {
			return valueFraction(MaxLoad, s.Settings.Load, s.Degradation)
		},
	},
	{
		Type: RandomizedPriorityLeastUsed, Name: "RandomizedPriorityLeastUsed",
		DefaultMaxIncrement: 1, Kind: ValueTree,
		compare: byIdentifier,
		value: func(s *State) uint64 {
			return valueFraction(MaxLoad, s.Settings.Load, s.Settings.LoadDegradation)
		},
	},
	{
		Type: RandomizedPriorityLeastUsedDegradation, Name: "RandomizedPriorityLeastUsedDegradation",
		DefaultMaxIncrement: 1, Kind: ValueTree,
		compare: byIdentifier,
		value: func(s *State) uint64 {
			return valueFraction(MaxLoad, s.Settings.Load, s.Settings.LoadDegradation, s.Degradation)
		},
	},
}

// ByType - lookup a policy, nil if the type has no implementation
func ByType(t Type) *Policy {
	for _, p := range policies {
		if p.Type == t {
			return p
		}
	}
	return nil
}

// ByName - lookup a policy by its name, nil if not known
func ByName(name string) *Policy {
	for _, p := range policies {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// All - every implemented policy
func All() []*Policy {
	return append([]*Policy(nil), policies...)
}
