// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registrar

import (
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/ratelimit"
	"github.com/bitmark-inc/rserpoold/transport"
)

// Selection - one element returned by a resolution
type Selection struct {
	Identifier    uint32
	HomeRegistrar uint32
	Settings      policy.Settings
	UserTransport *transport.AddressBlock
}

// Register - add or refresh a pool element
//
// an undefined home registrar becomes this registrar
func (r *Registrar) Register(request *handlespace.Registration, origin Origin) (uint32, error) {
	registration := *request
	if handlespace.UndefinedRegistrar == registration.HomeRegistrar {
		registration.HomeRegistrar = r.identifier
	}

	r.Lock()
	defer r.Unlock()

	e, err := r.hs.RegisterPoolElement(&registration, r.now(), origin)
	if nil != err {
		r.statistics.failures.Increment()
		r.log.Debugf("register: %s/$%08x  error: %s", registration.Handle, registration.Identifier, err)
		return 0, err
	}

	if e.IsNew() {
		r.statistics.registrations.Increment()
		r.log.Debugf("registered: %s", e)
	} else {
		r.statistics.reregistrations.Increment()
	}
	return e.Identifier, nil
}

// Deregister - remove a pool element
func (r *Registrar) Deregister(handle poolhandle.Handle, identifier uint32) error {
	r.Lock()
	defer r.Unlock()

	err := r.hs.DeregisterPoolElement(handle, identifier)
	if nil != err {
		r.statistics.failures.Increment()
		return err
	}
	r.statistics.deregistrations.Increment()
	r.log.Debugf("deregistered: %s/$%08x", handle, identifier)
	return nil
}

// Resolve - select up to maxItems elements of a pool
//
// requests are delayed to the configured rate, maxItems above the
// configured limit is reduced to it
func (r *Registrar) Resolve(handle poolhandle.Handle, maxItems int) ([]Selection, error) {
	if maxItems > r.maxItems {
		maxItems = r.maxItems
	}
	if err := ratelimit.LimitN(r.limiter, maxItems, r.maxItems); nil != err {
		r.statistics.failures.Increment()
		return nil, err
	}

	r.Lock()
	defer r.Unlock()

	elements, err := r.hs.HandleResolution(handle, maxItems, r.maxIncrement)
	if nil != err {
		r.statistics.failures.Increment()
		return nil, err
	}
	r.statistics.resolutions.Increment()

	selections := make([]Selection, len(elements))
	for i, e := range elements {
		selections[i] = Selection{
			Identifier:    e.Identifier,
			HomeRegistrar: e.HomeRegistrar,
			Settings:      e.Settings,
			UserTransport: e.UserTransport.Duplicate(),
		}
	}
	return selections, nil
}

// ReportUnreachable - a user could not reach an element, it is removed
// after the configured number of reports
func (r *Registrar) ReportUnreachable(handle poolhandle.Handle, identifier uint32) (bool, error) {
	r.Lock()
	defer r.Unlock()

	removed, err := r.hs.ReportUnreachability(handle, identifier, r.maxBadReports)
	if nil != err {
		return false, err
	}
	if removed {
		r.statistics.deregistrations.Increment()
		r.log.Infof("unreachable: %s/$%08x removed", handle, identifier)
	}
	return removed, nil
}

// Connect - allocate a descriptor for a registrator connection
func (r *Registrar) Connect() (int, error) {
	r.Lock()
	defer r.Unlock()

	socket, ok := r.connections.Allocate()
	if !ok {
		return 0, fault.ErrNoResources
	}
	r.statistics.connections.Increment()
	return socket, nil
}

// Disconnect - remove every element registered through the connection
// and release its descriptor
func (r *Registrar) Disconnect(socket int) (int, error) {
	r.Lock()
	defer r.Unlock()

	if socket < 1 || socket >= r.connections.Entries() || !r.connections.IsAllocated(socket) {
		return 0, fault.ErrNotFound
	}

	n := r.hs.PurgeConnection(socket, 0)
	r.statistics.deregistrations.Add(uint64(n))
	r.connections.Free(socket)
	r.statistics.connections.Decrement()

	r.log.Debugf("disconnect: %d  removed: %d", socket, n)
	return n, nil
}

// HandleTable - next page of the handle table, for a peer
//
// with ownOnly only this registrar's elements are included
func (r *Registrar) HandleTable(cursor *handlespace.HandleTableExtract, start bool, ownOnly bool, maxElements int) []handlespace.Registration {
	flags := handlespace.HandleTableFlags(0)
	if start {
		flags |= handlespace.HandleTableStart
	}
	if ownOnly {
		flags |= handlespace.HandleTableOwnChildsOnly
	}

	r.Lock()
	defer r.Unlock()

	elements := r.hs.GetHandleTable(r.identifier, cursor, flags, maxElements)
	table := make([]handlespace.Registration, len(elements))
	for i, e := range elements {
		table[i] = handlespace.Registration{
			Handle:               e.Pool.Handle,
			HomeRegistrar:        e.HomeRegistrar,
			Identifier:           e.Identifier,
			RegistrationLife:     e.RegistrationLife,
			Settings:             e.Settings,
			UserTransport:        e.UserTransport.Duplicate(),
			RegistratorTransport: e.RegistratorTransport.Duplicate(),
			ConnectionSocket:     handlespace.NoSocket,
		}
	}
	return table
}

// Checksum - handlespace checksum and this registrar's own checksum
func (r *Registrar) Checksum() (uint16, uint16) {
	r.Lock()
	defer r.Unlock()
	return r.hs.HandlespaceChecksum(), r.hs.OwnershipChecksum(r.identifier)
}
