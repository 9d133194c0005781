// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/rbtree"
)

// NoSocket - an element not registered through a live connection
const NoSocket = -1

// UpdateConnectionOfPoolElementNode - move an element to another
// socket/association, a socket below one removes it from the
// connection index
func (hs *Handlespace[T]) UpdateConnectionOfPoolElementNode(e *Element[T], socket int, assoc uint32) {
	if socket == e.ConnectionSocket && assoc == e.ConnectionAssoc {
		return
	}
	hs.unlinkConnection(e)
	e.ConnectionSocket = socket
	e.ConnectionAssoc = assoc
	hs.linkConnection(e)
}

func (hs *Handlespace[T]) linkConnection(e *Element[T]) {
	if e.ConnectionSocket < 1 {
		return
	}
	h, ok := hs.connections.Insert(connectionItem[T]{e: e}, 0)
	if !ok {
		fault.Panicf("connection: duplicate %s", e)
	}
	e.connection = h
}

func (hs *Handlespace[T]) unlinkConnection(e *Element[T]) {
	if rbtree.Null == e.connection {
		return
	}
	hs.connections.Remove(e.connection)
	e.connection = rbtree.Null
}

// FirstConnectionForConnection - first element registered through the
// socket/association, nil if none
func (hs *Handlespace[T]) FirstConnectionForConnection(socket int, assoc uint32) *Element[T] {
	p := probe[T](poolhandle.Handle{}, 0)
	p.ConnectionSocket = socket
	p.ConnectionAssoc = assoc
	e := hs.connectionOf(hs.connections.NearestNext(connectionItem[T]{e: p}))
	if nil == e || e.ConnectionSocket != socket || e.ConnectionAssoc != assoc {
		return nil
	}
	return e
}

// NextConnectionForSameConnection - nil after the last element of the
// same socket/association
func (hs *Handlespace[T]) NextConnectionForSameConnection(e *Element[T]) *Element[T] {
	next := hs.connectionOf(hs.connections.Next(e.connection))
	if nil == next || next.ConnectionSocket != e.ConnectionSocket || next.ConnectionAssoc != e.ConnectionAssoc {
		return nil
	}
	return next
}

// FirstConnection - lowest socket, nil if none
func (hs *Handlespace[T]) FirstConnection() *Element[T] {
	return hs.connectionOf(hs.connections.First())
}

// NextConnection - nil at the end
func (hs *Handlespace[T]) NextConnection(e *Element[T]) *Element[T] {
	return hs.connectionOf(hs.connections.Next(e.connection))
}

// PoolElementsOfConnection - number of elements registered through the
// socket/association
func (hs *Handlespace[T]) PoolElementsOfConnection(socket int, assoc uint32) int {
	n := 0
	for e := hs.FirstConnectionForConnection(socket, assoc); nil != e; e = hs.NextConnectionForSameConnection(e) {
		n += 1
	}
	return n
}

// PurgeConnection - deregister every element registered through the
// socket/association, as when it has been closed
func (hs *Handlespace[T]) PurgeConnection(socket int, assoc uint32) int {
	purged := 0
	e := hs.FirstConnectionForConnection(socket, assoc)
	for nil != e {
		next := hs.NextConnectionForSameConnection(e)
		hs.DeregisterPoolElementByPtr(e)
		purged += 1
		e = next
	}
	return purged
}

func (hs *Handlespace[T]) connectionOf(h rbtree.Handle) *Element[T] {
	if rbtree.Null == h {
		return nil
	}
	return hs.connections.Item(h).e
}
