// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"math/rand"
	"time"

	"github.com/bitmark-inc/rserpoold/checksum"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/rbtree"
)

// Random - source for the value tree policies
type Random interface {
	Uint64() uint64
}

// Configuration - optional parts of a handlespace
type Configuration[T any] struct {
	Random          Random       // default: time seeded math/rand
	Observer        Observer     // receives element changes
	Disposer        func(data T) // called once for the user data of each removed element
	MaxPoolElements int          // registration fails with no resources beyond this, 0 for no limit
}

// per home registrar totals, so ownership checksums are O(1)
type ownerTotal struct {
	count int
	sum   checksum.Accumulator
}

// Handlespace - all pools known to one registrar
type Handlespace[T any] struct {
	homeRegistrar uint32

	pools       *rbtree.Tree[poolItem[T]]
	timers      *rbtree.Tree[timerItem[T]]
	connections *rbtree.Tree[connectionItem[T]]
	ownerships  *rbtree.Tree[ownershipItem[T]]

	poolElements int
	sum          checksum.Accumulator
	owners       map[uint32]*ownerTotal

	random          Random
	observer        Observer
	disposer        func(data T)
	maxPoolElements int
}

// New - create an empty handlespace for the registrar homeRegistrar
func New[T any](homeRegistrar uint32, configuration *Configuration[T]) *Handlespace[T] {
	hs := &Handlespace[T]{
		homeRegistrar: homeRegistrar,
		pools:         rbtree.New[poolItem[T]](),
		timers:        rbtree.New[timerItem[T]](),
		connections:   rbtree.New[connectionItem[T]](),
		ownerships:    rbtree.New[ownershipItem[T]](),
		sum:           checksum.Initial,
		owners:        make(map[uint32]*ownerTotal),
	}
	if nil != configuration {
		hs.random = configuration.Random
		hs.observer = configuration.Observer
		hs.disposer = configuration.Disposer
		hs.maxPoolElements = configuration.MaxPoolElements
	}
	if nil == hs.random {
		hs.random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return hs
}

// HomeRegistrar - identifier of the registrar owning this handlespace
func (hs *Handlespace[T]) HomeRegistrar() uint32 {
	return hs.homeRegistrar
}

// SetHomeRegistrar - change the own identifier, e.g. after a clash
// was detected
func (hs *Handlespace[T]) SetHomeRegistrar(identifier uint32) {
	hs.homeRegistrar = identifier
}

// Pools - number of pools
func (hs *Handlespace[T]) Pools() int {
	return hs.pools.Count()
}

// PoolElements - number of pool elements in all pools
func (hs *Handlespace[T]) PoolElements() int {
	return hs.poolElements
}

// OwnedPoolElements - number of pool elements whose home is this
// registrar
func (hs *Handlespace[T]) OwnedPoolElements() int {
	return hs.OwnershipNodesForIdentifier(hs.homeRegistrar)
}

// OwnershipNodesForIdentifier - number of pool elements with the given
// home registrar
func (hs *Handlespace[T]) OwnershipNodesForIdentifier(homeRegistrar uint32) int {
	if t, ok := hs.owners[homeRegistrar]; ok {
		return t.count
	}
	return 0
}

// PoolElementsOfPool - number of elements in a pool, zero if the pool
// does not exist
func (hs *Handlespace[T]) PoolElementsOfPool(handle poolhandle.Handle) int {
	pool := hs.FindPool(handle)
	if nil == pool {
		return 0
	}
	return pool.Elements()
}

// HandlespaceChecksum - finished checksum over all elements
func (hs *Handlespace[T]) HandlespaceChecksum() uint16 {
	return hs.sum.Finish()
}

// OwnershipChecksum - finished checksum over the elements with the
// given home registrar
func (hs *Handlespace[T]) OwnershipChecksum(homeRegistrar uint32) uint16 {
	return hs.ownershipAccumulator(homeRegistrar).Finish()
}

func (hs *Handlespace[T]) ownershipAccumulator(homeRegistrar uint32) checksum.Accumulator {
	if t, ok := hs.owners[homeRegistrar]; ok {
		return t.sum
	}
	return checksum.Initial
}

// ComputeHandlespaceChecksum - full recomputation, for verification
func (hs *Handlespace[T]) ComputeHandlespaceChecksum() uint16 {
	return hs.computeHandlespaceAccumulator().Finish()
}

func (hs *Handlespace[T]) computeHandlespaceAccumulator() checksum.Accumulator {
	sum := checksum.Initial
	for pool := hs.FirstPool(); nil != pool; pool = hs.NextPool(pool) {
		for e := pool.FirstElement(); nil != e; e = pool.NextElement(e) {
			sum = sum.Add(elementChecksum(pool, e.Identifier))
		}
	}
	return sum
}

// ComputeOwnershipChecksum - full recomputation for one home
// registrar, for verification
func (hs *Handlespace[T]) ComputeOwnershipChecksum(homeRegistrar uint32) uint16 {
	return hs.computeOwnershipAccumulator(homeRegistrar).Finish()
}

func (hs *Handlespace[T]) computeOwnershipAccumulator(homeRegistrar uint32) checksum.Accumulator {
	sum := checksum.Initial
	for e := hs.FirstOwnershipForIdentifier(homeRegistrar); nil != e; e = hs.NextOwnershipForSameIdentifier(e) {
		sum = sum.Add(elementChecksum(e.Pool, e.Identifier))
	}
	return sum
}

// Clear - deregister every element
func (hs *Handlespace[T]) Clear() {
	for pool := hs.FirstPool(); nil != pool; pool = hs.FirstPool() {
		for e := pool.FirstElement(); nil != e; e = pool.FirstElement() {
			hs.DeregisterPoolElementByPtr(e)
		}
	}
}
