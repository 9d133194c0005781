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

// Registration - the contents of one registration request
//
// the transports are copied, the caller keeps ownership of its blocks
type Registration struct {
	Handle               poolhandle.Handle
	HomeRegistrar        uint32
	Identifier           uint32
	RegistrationLife     uint64 // µs
	Settings             policy.Settings
	UserTransport        *transport.AddressBlock
	RegistratorTransport *transport.AddressBlock
	ConnectionSocket     int
	ConnectionAssoc      uint32
}

// RegisterPoolElement - add an element or refresh an existing one
//
// userData is attached to a new element only, a reregistration keeps
// the data of the existing element.  On error nothing is changed.
func (hs *Handlespace[T]) RegisterPoolElement(r *Registration, now uint64, userData T) (*Element[T], error) {
	if !r.Handle.IsValid() {
		return nil, fault.ErrInvalidPoolHandle
	}
	p := policy.ByType(r.Settings.Type)
	if nil == p {
		return nil, fault.ErrInvalidPoolPolicy
	}

	pool := hs.FindPool(r.Handle)
	created := false
	if nil == pool {
		pool = newPool[T](r.Handle, p, r.UserTransport)
		hs.addPool(pool)
		created = true
	}

	err := checkCompatibility(pool, r)
	if nil == err && nil == pool.find(r.Identifier) &&
		hs.maxPoolElements > 0 && hs.poolElements >= hs.maxPoolElements {
		err = fault.ErrNoResources
	}
	if nil != err {
		if created {
			hs.removePool(pool)
		}
		return nil, err
	}

	e := pool.find(r.Identifier)
	if nil == e {
		e = hs.addElement(pool, r, userData)
	} else {
		hs.updateElement(e, r)
	}

	e.LastUpdateTimeStamp = now
	hs.RestartPoolElementExpiryTimer(e, e.RegistrationLife)
	return e, nil
}

// order follows the causes a registrar reports most usefully first
func checkCompatibility[T any](pool *Pool[T], r *Registration) error {
	if 0 == r.Identifier {
		return fault.ErrInvalidID
	}
	if nil == r.UserTransport {
		return fault.ErrInvalidAddresses
	}
	if pool.Protocol != r.UserTransport.Protocol {
		return fault.ErrWrongProtocol
	}
	if nil != r.RegistratorTransport && !r.RegistratorTransport.IsValidRegistrator() {
		return fault.ErrInvalidRegistrator
	}
	if !r.UserTransport.IsValidUser() {
		return fault.ErrInvalidAddresses
	}
	if pool.ControlChannel != r.UserTransport.HasControlChannel() {
		return fault.ErrWrongControlChannelHandling
	}
	if !r.Settings.IsValid() {
		return fault.ErrInvalidPoolPolicy
	}
	if pool.Policy.Type != r.Settings.Type {
		return fault.ErrIncompatiblePoolPolicy
	}
	return nil
}

func (hs *Handlespace[T]) addElement(pool *Pool[T], r *Registration, userData T) *Element[T] {
	e := &Element[T]{
		Pool:                 pool,
		RegistrationLife:     r.RegistrationLife,
		UserTransport:        r.UserTransport.Duplicate(),
		RegistratorTransport: r.RegistratorTransport.Duplicate(),
		Flags:                FlagNew | FlagUpdated,
		UserData:             userData,
	}
	e.Identifier = r.Identifier
	e.Settings = r.Settings
	e.SeqNumber = pool.nextSeqNumber()
	e.Checksum = elementChecksum(pool, e.Identifier)

	var first *policy.State
	if head := pool.FirstSelection(); nil != head {
		first = &head.State
	}
	pool.Policy.Initialise(&e.State, first)

	h, ok := pool.elements.Insert(nameItem[T]{e: e}, 0)
	if !ok {
		fault.Panicf("name: duplicate %s", e)
	}
	e.name = h
	pool.linkSelection(e)

	hs.poolElements += 1
	hs.sum = hs.sum.Add(e.Checksum)

	e.ConnectionSocket = r.ConnectionSocket
	e.ConnectionAssoc = r.ConnectionAssoc
	hs.linkConnection(e)
	e.HomeRegistrar = r.HomeRegistrar
	hs.linkOwnership(e)

	hs.notify(ActionCreate, e, e.Checksum, UndefinedRegistrar)
	return e
}

func (hs *Handlespace[T]) updateElement(e *Element[T], r *Registration) {
	pool := e.Pool
	previousChecksum := e.Checksum
	previousOwner := e.HomeRegistrar

	e.Flags &^= FlagMarked | FlagNew
	if !e.Settings.SameParameters(r.Settings) || 0 != e.Degradation {
		pool.unlinkSelection(e)
		e.Settings = r.Settings
		e.Degradation = 0
		if e.VirtualCounter > uint64(e.Settings.Weight) {
			e.VirtualCounter = uint64(e.Settings.Weight)
		}
		pool.linkSelection(e)
		e.Flags |= FlagUpdated
	} else {
		e.Flags &^= FlagUpdated
	}

	if !e.UserTransport.Equal(r.UserTransport) {
		e.UserTransport = r.UserTransport.Duplicate()
	}
	if !e.RegistratorTransport.Equal(r.RegistratorTransport) {
		e.RegistratorTransport = r.RegistratorTransport.Duplicate()
	}
	e.RegistrationLife = r.RegistrationLife
	e.UnreachabilityReports = 0

	// the contribution depends on handle and identifier only, replace
	// it so the running sums always match a recomputation
	hs.unlinkOwnership(e)
	hs.sum = hs.sum.Sub(e.Checksum)
	e.Checksum = elementChecksum(pool, e.Identifier)
	hs.sum = hs.sum.Add(e.Checksum)
	e.HomeRegistrar = r.HomeRegistrar
	hs.linkOwnership(e)

	hs.UpdateConnectionOfPoolElementNode(e, r.ConnectionSocket, r.ConnectionAssoc)

	hs.notify(ActionUpdate, e, previousChecksum, previousOwner)
}

// FindPoolElement - nil if either the pool or the element is absent
func (hs *Handlespace[T]) FindPoolElement(handle poolhandle.Handle, identifier uint32) *Element[T] {
	pool := hs.FindPool(handle)
	if nil == pool {
		return nil
	}
	return pool.find(identifier)
}

// DeregisterPoolElement - remove an element by pool handle and
// identifier
func (hs *Handlespace[T]) DeregisterPoolElement(handle poolhandle.Handle, identifier uint32) error {
	e := hs.FindPoolElement(handle, identifier)
	if nil == e {
		return fault.ErrNotFound
	}
	hs.DeregisterPoolElementByPtr(e)
	return nil
}

// DeregisterPoolElementByPtr - remove an element from every index,
// dropping its pool if it was the last one
func (hs *Handlespace[T]) DeregisterPoolElementByPtr(e *Element[T]) {
	if !e.IsRegistered() {
		fault.Panicf("deregister: %s is not registered", e)
	}
	pool := e.Pool

	hs.DeactivateTimer(e)
	hs.unlinkOwnership(e)
	hs.unlinkConnection(e)
	pool.unlinkSelection(e)
	pool.elements.Remove(e.name)
	e.name = rbtree.Null

	hs.poolElements -= 1
	hs.sum = hs.sum.Sub(e.Checksum)

	hs.notify(ActionDelete, e, e.Checksum, e.HomeRegistrar)

	if pool.elements.IsEmpty() {
		hs.removePool(pool)
	}

	if nil != hs.disposer {
		hs.disposer(e.UserData)
	}
	var zero T
	e.UserData = zero
	e.UserTransport = nil
	e.RegistratorTransport = nil
}

// ReportUnreachability - count a report that an element could not be
// reached, removing it once maxReports is reached
//
// returns true if the element was removed
func (hs *Handlespace[T]) ReportUnreachability(handle poolhandle.Handle, identifier uint32, maxReports int) (bool, error) {
	e := hs.FindPoolElement(handle, identifier)
	if nil == e {
		return false, fault.ErrNotFound
	}
	e.UnreachabilityReports += 1
	if e.UnreachabilityReports >= maxReports {
		hs.DeregisterPoolElementByPtr(e)
		return true, nil
	}
	return false, nil
}
