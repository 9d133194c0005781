// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"encoding/binary"
	"fmt"

	"github.com/bitmark-inc/rserpoold/checksum"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/rbtree"
	"github.com/bitmark-inc/rserpoold/transport"
)

// TimerCode - what an element's timer is for
type TimerCode uint32

// timer codes
const (
	TimerNone                  TimerCode = 0
	TimerExpiry                TimerCode = 1000
	TimerKeepAliveTransmission TimerCode = 1001
	TimerKeepAliveTimeout      TimerCode = 1002
)

// Flags - element state bits
type Flags uint32

// element flags
const (
	FlagMarked  Flags = 1 << 0  // owner is suspected dead
	FlagUpdated Flags = 1 << 14 // last registration changed policy settings
	FlagNew     Flags = 1 << 15 // created by the last registration
)

// UndefinedRegistrar - an element with no home registrar
const UndefinedRegistrar uint32 = 0

// Element - one registered pool element
type Element[T any] struct {
	policy.State

	Pool                  *Pool[T]
	HomeRegistrar         uint32
	RegistrationLife      uint64 // µs
	UserTransport         *transport.AddressBlock
	RegistratorTransport  *transport.AddressBlock
	ConnectionSocket      int
	ConnectionAssoc       uint32
	LastUpdateTimeStamp   uint64
	TimerTimeStamp        uint64
	TimerCode             TimerCode
	Flags                 Flags
	UnreachabilityReports int
	Checksum              checksum.Accumulator
	UserData              T

	name       rbtree.Handle
	selection  rbtree.Handle
	timer      rbtree.Handle
	connection rbtree.Handle
	ownership  rbtree.Handle
}

// elementChecksum - contribution of one element: its pool handle
// followed by its identifier
func elementChecksum[T any](pool *Pool[T], identifier uint32) checksum.Accumulator {
	id := [4]byte{}
	binary.BigEndian.PutUint32(id[:], identifier)
	sum := checksum.Compute(checksum.Initial, pool.Handle.Bytes())
	return checksum.Compute(sum, id[:])
}

// IsMarked - flag test
func (e *Element[T]) IsMarked() bool {
	return 0 != e.Flags&FlagMarked
}

// IsNew - created by the most recent registration call
func (e *Element[T]) IsNew() bool {
	return 0 != e.Flags&FlagNew
}

// IsUpdated - the most recent registration changed its policy settings
func (e *Element[T]) IsUpdated() bool {
	return 0 != e.Flags&FlagUpdated
}

// IsRegistered - still present in the handlespace
func (e *Element[T]) IsRegistered() bool {
	return nil != e.Pool && rbtree.Null != e.name
}

// HasTimer - timer is active
func (e *Element[T]) HasTimer() bool {
	return rbtree.Null != e.timer
}

// String - one line description
func (e *Element[T]) String() string {
	handle := "-"
	if nil != e.Pool {
		handle = e.Pool.Handle.String()
	}
	return fmt.Sprintf("%s/$%08x home=$%08x life=%dµs seq=%d sel=%d flags=$%04x %s user=%s",
		handle, e.Identifier, e.HomeRegistrar, e.RegistrationLife,
		e.SeqNumber, e.SelectionCounter, uint32(e.Flags),
		e.Settings, e.UserTransport)
}
