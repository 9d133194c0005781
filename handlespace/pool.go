// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/rbtree"
	"github.com/bitmark-inc/rserpoold/transport"
)

// Pool - the elements registered under one pool handle
//
// protocol, control channel use and policy are fixed by the first
// registration and every later one must match them
type Pool[T any] struct {
	Handle         poolhandle.Handle
	Policy         *policy.Policy
	Protocol       transport.Protocol
	ControlChannel bool

	elements        *rbtree.Tree[nameItem[T]]
	selection       *rbtree.Tree[selectionItem[T]]
	globalSeqNumber uint64
	node            rbtree.Handle
}

func newPool[T any](handle poolhandle.Handle, p *policy.Policy, userTransport *transport.AddressBlock) *Pool[T] {
	pool := &Pool[T]{
		Handle:    handle,
		Policy:    p,
		elements:  rbtree.New[nameItem[T]](),
		selection: rbtree.New[selectionItem[T]](),
	}
	if nil != userTransport {
		pool.Protocol = userTransport.Protocol
		pool.ControlChannel = userTransport.HasControlChannel()
	}
	return pool
}

// Elements - number of elements
func (pool *Pool[T]) Elements() int {
	return pool.elements.Count()
}

// GlobalSeqNumber - next sequence number to be given out
func (pool *Pool[T]) GlobalSeqNumber() uint64 {
	return pool.globalSeqNumber
}

// FirstElement - lowest identifier, nil if empty
func (pool *Pool[T]) FirstElement() *Element[T] {
	return pool.elementOf(pool.elements.First())
}

// LastElement - highest identifier, nil if empty
func (pool *Pool[T]) LastElement() *Element[T] {
	return pool.elementOf(pool.elements.Last())
}

// NextElement - by identifier, nil at the end
func (pool *Pool[T]) NextElement(e *Element[T]) *Element[T] {
	return pool.elementOf(pool.elements.Next(e.name))
}

// PrevElement - by identifier, nil at the start
func (pool *Pool[T]) PrevElement(e *Element[T]) *Element[T] {
	return pool.elementOf(pool.elements.Prev(e.name))
}

// FirstSelection - head of the policy order, nil if empty
func (pool *Pool[T]) FirstSelection() *Element[T] {
	h := pool.selection.First()
	if rbtree.Null == h {
		return nil
	}
	return pool.selection.Item(h).e
}

// NextSelection - following element in the policy order
func (pool *Pool[T]) NextSelection(e *Element[T]) *Element[T] {
	h := pool.selection.Next(e.selection)
	if rbtree.Null == h {
		return nil
	}
	return pool.selection.Item(h).e
}

// find - element by identifier
func (pool *Pool[T]) find(identifier uint32) *Element[T] {
	return pool.elementOf(pool.elements.Find(nameItem[T]{e: probe[T](pool.Handle, identifier)}))
}

// nearestNext - element with the lowest identifier above the given one
func (pool *Pool[T]) nearestNext(identifier uint32) *Element[T] {
	return pool.elementOf(pool.elements.NearestNext(nameItem[T]{e: probe[T](pool.Handle, identifier)}))
}

func (pool *Pool[T]) elementOf(h rbtree.Handle) *Element[T] {
	if rbtree.Null == h {
		return nil
	}
	return pool.elements.Item(h).e
}

// linkSelection - the value is taken from the policy at link time
func (pool *Pool[T]) linkSelection(e *Element[T]) {
	h, ok := pool.selection.Insert(selectionItem[T]{e: e}, pool.Policy.Value(&e.State))
	if !ok {
		fault.Panicf("selection: duplicate %s", e)
	}
	e.selection = h
}

func (pool *Pool[T]) unlinkSelection(e *Element[T]) {
	pool.selection.Remove(e.selection)
	e.selection = rbtree.Null
}

// nextSeqNumber - give out the next sequence number of the pool
func (pool *Pool[T]) nextSeqNumber() uint64 {
	seq := pool.globalSeqNumber
	pool.globalSeqNumber += 1
	return seq
}

// FindPool - nil if no such pool
func (hs *Handlespace[T]) FindPool(handle poolhandle.Handle) *Pool[T] {
	return hs.poolOf(hs.pools.Find(poolItem[T]{pool: &Pool[T]{Handle: handle}}))
}

// FirstPool - lowest pool handle, nil if empty
func (hs *Handlespace[T]) FirstPool() *Pool[T] {
	return hs.poolOf(hs.pools.First())
}

// LastPool - highest pool handle, nil if empty
func (hs *Handlespace[T]) LastPool() *Pool[T] {
	return hs.poolOf(hs.pools.Last())
}

// NextPool - by handle, nil at the end
func (hs *Handlespace[T]) NextPool(pool *Pool[T]) *Pool[T] {
	return hs.poolOf(hs.pools.Next(pool.node))
}

// PrevPool - by handle, nil at the start
func (hs *Handlespace[T]) PrevPool(pool *Pool[T]) *Pool[T] {
	return hs.poolOf(hs.pools.Prev(pool.node))
}

func (hs *Handlespace[T]) nearestNextPool(handle poolhandle.Handle) *Pool[T] {
	return hs.poolOf(hs.pools.NearestNext(poolItem[T]{pool: &Pool[T]{Handle: handle}}))
}

func (hs *Handlespace[T]) poolOf(h rbtree.Handle) *Pool[T] {
	if rbtree.Null == h {
		return nil
	}
	return hs.pools.Item(h).pool
}

func (hs *Handlespace[T]) addPool(pool *Pool[T]) {
	h, ok := hs.pools.Insert(poolItem[T]{pool: pool}, 0)
	if !ok {
		fault.Panicf("pool: duplicate %s", pool.Handle)
	}
	pool.node = h
}

func (hs *Handlespace[T]) removePool(pool *Pool[T]) {
	if !pool.elements.IsEmpty() {
		fault.Panicf("pool: %s removed with %d elements", pool.Handle, pool.Elements())
	}
	hs.pools.Remove(pool.node)
	pool.node = rbtree.Null
}
