// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package takeover - registrar takeover procedures in progress
//
// a takeover of a failed registrar waits for every other peer to
// acknowledge it, or for its timeout
package takeover

import (
	"fmt"
	"sort"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/rserpoold/fault"
)

// ExpiryFunc - called once for a takeover that timed out, with the
// peers that never acknowledged it
type ExpiryFunc func(targetID uint32, outstanding []uint32)

// Process - state of one takeover
type Process struct {
	TargetID    uint32
	Started     time.Time
	outstanding map[uint32]struct{}
	finished    bool
}

// Outstanding - peers yet to acknowledge, in ascending order
func (p *Process) Outstanding() []uint32 {
	result := make([]uint32, 0, len(p.outstanding))
	for id := range p.outstanding {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// List - the takeovers in progress
type List struct {
	sync.Mutex
	cache   *cache.Cache
	timeout time.Duration
	expired ExpiryFunc
}

// New - empty list; expired entries are found every cleanup interval
// or when Expire is called
func New(timeout time.Duration, cleanup time.Duration, expired ExpiryFunc) *List {
	l := &List{
		cache:   cache.New(timeout, cleanup),
		timeout: timeout,
		expired: expired,
	}
	l.cache.OnEvicted(l.evicted)
	return l
}

func key(targetID uint32) string {
	return fmt.Sprintf("%08x", targetID)
}

// Create - start a takeover of targetID needing acknowledgements from
// every peer except the target and this registrar
func (l *List) Create(targetID uint32, peers []uint32, ownID uint32) error {
	if targetID == ownID {
		return fault.ErrOwnID
	}

	p := &Process{
		TargetID:    targetID,
		Started:     time.Now(),
		outstanding: make(map[uint32]struct{}),
	}
	for _, id := range peers {
		if id != targetID && id != ownID {
			p.outstanding[id] = struct{}{}
		}
	}

	if err := l.cache.Add(key(targetID), p, l.timeout); nil != err {
		return fault.ErrTakeoverExists
	}
	return nil
}

// Acknowledge - record a peer's acknowledgement
//
// ok is false for an unknown takeover or a peer not expected to
// acknowledge, remaining counts the peers still outstanding
func (l *List) Acknowledge(targetID uint32, peerID uint32) (int, bool) {
	p, found := l.get(targetID)
	if !found {
		return 0, false
	}

	l.Lock()
	defer l.Unlock()

	if _, ok := p.outstanding[peerID]; !ok {
		return len(p.outstanding), false
	}
	delete(p.outstanding, peerID)
	return len(p.outstanding), true
}

// Find - snapshot of a takeover
func (l *List) Find(targetID uint32) (Process, bool) {
	p, found := l.get(targetID)
	if !found {
		return Process{}, false
	}

	l.Lock()
	defer l.Unlock()

	result := Process{
		TargetID:    p.TargetID,
		Started:     p.Started,
		outstanding: make(map[uint32]struct{}, len(p.outstanding)),
	}
	for id := range p.outstanding {
		result.outstanding[id] = struct{}{}
	}
	return result, true
}

// Delete - finish a takeover without calling the expiry function
//
// true only for the caller that finished it, false if it was already
// deleted or has expired
func (l *List) Delete(targetID uint32) bool {
	p, found := l.get(targetID)
	if !found {
		return false
	}
	l.Lock()
	finished := p.finished
	p.finished = true
	l.Unlock()
	l.cache.Delete(key(targetID))
	return !finished
}

// Count - takeovers in progress
func (l *List) Count() int {
	return l.cache.ItemCount()
}

// Expire - run the expiry function for every takeover past its timeout
func (l *List) Expire() {
	l.cache.DeleteExpired()
}

func (l *List) get(targetID uint32) (*Process, bool) {
	obj, found := l.cache.Get(key(targetID))
	if !found {
		return nil, false
	}
	return obj.(*Process), true
}

// eviction happens both on expiry and on Delete, only the former is
// reported
func (l *List) evicted(_ string, obj interface{}) {
	p := obj.(*Process)

	l.Lock()
	finished := p.finished
	p.finished = true
	outstanding := p.Outstanding()
	l.Unlock()

	if finished || nil == l.expired {
		return
	}
	l.expired(p.TargetID, outstanding)
}
