// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registrar

import (
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
)

// BeginSynchronisation - a peer is about to resend its handle table,
// flag its elements so those it no longer has can be found
func (r *Registrar) BeginSynchronisation(peer uint32) int {
	r.Lock()
	defer r.Unlock()

	n := r.hs.MarkPoolElementNodes(peer)
	r.log.Debugf("synchronise: $%08x  marked: %d", peer, n)
	return n
}

// EndSynchronisation - remove the peer's elements not present in its
// handle table
func (r *Registrar) EndSynchronisation(peer uint32) int {
	r.Lock()
	defer r.Unlock()

	n := r.hs.PurgeMarkedPoolElementNodes(peer)
	r.statistics.deregistrations.Add(uint64(n))
	r.log.Debugf("synchronised: $%08x  purged: %d", peer, n)
	return n
}

// PeerDown - start taking over the elements of a failed registrar
//
// peers are all registrars known to be alive, each must acknowledge
// the takeover before it completes
func (r *Registrar) PeerDown(target uint32, peers []uint32) error {
	if handlespace.UndefinedRegistrar == target {
		return fault.ErrInvalidID
	}
	if err := r.takeovers.Create(target, peers, r.identifier); nil != err {
		return err
	}
	r.log.Warnf("takeover: $%08x started", target)

	if p, ok := r.takeovers.Find(target); ok && 0 == len(p.Outstanding()) && r.takeovers.Delete(target) {
		r.finishTakeover(target)
	}
	return nil
}

// AcknowledgeTakeover - a peer agrees with the takeover of target
func (r *Registrar) AcknowledgeTakeover(target uint32, peer uint32) error {
	remaining, ok := r.takeovers.Acknowledge(target, peer)
	if !ok {
		return fault.ErrNotFound
	}
	if 0 == remaining && r.takeovers.Delete(target) {
		r.finishTakeover(target)
	}
	return nil
}

func (r *Registrar) takeoverExpired(target uint32, outstanding []uint32) {
	r.log.Warnf("takeover: $%08x timed out waiting for: %v", target, outstanding)
	r.finishTakeover(target)
}

// adopt every element of target
//
// called once per takeover, by whichever of the last acknowledgement
// or the expiry removed it from the list
func (r *Registrar) finishTakeover(target uint32) {
	r.Lock()
	defer r.Unlock()

	n := 0
	e := r.hs.FirstOwnershipForIdentifier(target)
	for nil != e {
		next := r.hs.NextOwnershipForSameIdentifier(e)
		e.Flags &^= handlespace.FlagMarked
		r.hs.UpdateOwnershipOfPoolElementNode(e, r.identifier)
		n += 1
		e = next
	}
	r.statistics.takeovers.Increment()
	r.log.Infof("takeover: $%08x complete  adopted: %d", target, n)
}
