// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"github.com/bitmark-inc/rserpoold/checksum"
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/rbtree"
)

// UpdateOwnershipOfPoolElementNode - move an element to another home
// registrar, adjusting both owners' checksums
func (hs *Handlespace[T]) UpdateOwnershipOfPoolElementNode(e *Element[T], homeRegistrar uint32) {
	previousOwner := e.HomeRegistrar
	if previousOwner == homeRegistrar {
		return
	}
	hs.unlinkOwnership(e)
	e.HomeRegistrar = homeRegistrar
	hs.linkOwnership(e)
	hs.notify(ActionUpdate, e, e.Checksum, previousOwner)
}

func (hs *Handlespace[T]) linkOwnership(e *Element[T]) {
	if UndefinedRegistrar == e.HomeRegistrar {
		return
	}
	h, ok := hs.ownerships.Insert(ownershipItem[T]{e: e}, 0)
	if !ok {
		fault.Panicf("ownership: duplicate %s", e)
	}
	e.ownership = h

	t, ok := hs.owners[e.HomeRegistrar]
	if !ok {
		t = &ownerTotal{sum: checksum.Initial}
		hs.owners[e.HomeRegistrar] = t
	}
	t.count += 1
	t.sum = t.sum.Add(e.Checksum)
}

func (hs *Handlespace[T]) unlinkOwnership(e *Element[T]) {
	if rbtree.Null == e.ownership {
		return
	}
	hs.ownerships.Remove(e.ownership)
	e.ownership = rbtree.Null

	t := hs.owners[e.HomeRegistrar]
	t.count -= 1
	t.sum = t.sum.Sub(e.Checksum)
	if 0 == t.count {
		delete(hs.owners, e.HomeRegistrar)
	}
}

// FirstOwnership - lowest home registrar, nil if none
func (hs *Handlespace[T]) FirstOwnership() *Element[T] {
	return hs.ownershipOf(hs.ownerships.First())
}

// NextOwnership - nil at the end
func (hs *Handlespace[T]) NextOwnership(e *Element[T]) *Element[T] {
	return hs.ownershipOf(hs.ownerships.Next(e.ownership))
}

// FirstOwnershipForIdentifier - first element owned by the registrar,
// nil if none
func (hs *Handlespace[T]) FirstOwnershipForIdentifier(homeRegistrar uint32) *Element[T] {
	return hs.nextOwnershipAfter(homeRegistrar, poolhandle.Handle{}, 0)
}

// NextOwnershipForSameIdentifier - nil after the last element of the
// same home registrar
func (hs *Handlespace[T]) NextOwnershipForSameIdentifier(e *Element[T]) *Element[T] {
	next := hs.ownershipOf(hs.ownerships.Next(e.ownership))
	if nil == next || next.HomeRegistrar != e.HomeRegistrar {
		return nil
	}
	return next
}

// first element of the owner after the given handle and identifier
func (hs *Handlespace[T]) nextOwnershipAfter(homeRegistrar uint32, handle poolhandle.Handle, identifier uint32) *Element[T] {
	p := probe[T](handle, identifier)
	p.HomeRegistrar = homeRegistrar
	e := hs.ownershipOf(hs.ownerships.NearestNext(ownershipItem[T]{e: p}))
	if nil == e || e.HomeRegistrar != homeRegistrar {
		return nil
	}
	return e
}

func (hs *Handlespace[T]) ownershipOf(h rbtree.Handle) *Element[T] {
	if rbtree.Null == h {
		return nil
	}
	return hs.ownerships.Item(h).e
}

// MarkPoolElementNodes - flag every element of the home registrar,
// as when that registrar is suspected to have failed
func (hs *Handlespace[T]) MarkPoolElementNodes(homeRegistrar uint32) int {
	n := 0
	for e := hs.FirstOwnershipForIdentifier(homeRegistrar); nil != e; e = hs.NextOwnershipForSameIdentifier(e) {
		e.Flags |= FlagMarked
		n += 1
	}
	return n
}

// PurgeMarkedPoolElementNodes - deregister the elements of the home
// registrar still flagged, i.e. not reregistered since marking
func (hs *Handlespace[T]) PurgeMarkedPoolElementNodes(homeRegistrar uint32) int {
	purged := 0
	e := hs.FirstOwnershipForIdentifier(homeRegistrar)
	for nil != e {
		next := hs.NextOwnershipForSameIdentifier(e)
		if e.IsMarked() {
			hs.DeregisterPoolElementByPtr(e)
			purged += 1
		}
		e = next
	}
	return purged
}
