// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/rbtree"
)

// ActivateTimer - start a timer on an element which has none
func (hs *Handlespace[T]) ActivateTimer(e *Element[T], code TimerCode, timeStamp uint64) {
	if rbtree.Null != e.timer {
		fault.Panicf("timer: %s already active with code %d", e, e.TimerCode)
	}
	if TimerNone == code {
		fault.Panicf("timer: %s activated without a code", e)
	}
	e.TimerCode = code
	e.TimerTimeStamp = timeStamp
	h, ok := hs.timers.Insert(timerItem[T]{e: e}, 0)
	if !ok {
		fault.Panicf("timer: duplicate %s", e)
	}
	e.timer = h
}

// DeactivateTimer - stop the timer of an element, if any
func (hs *Handlespace[T]) DeactivateTimer(e *Element[T]) {
	if rbtree.Null == e.timer {
		return
	}
	hs.timers.Remove(e.timer)
	e.timer = rbtree.Null
	e.TimerCode = TimerNone
}

// RestartPoolElementExpiryTimer - expire the element timeout
// microseconds after its last update
func (hs *Handlespace[T]) RestartPoolElementExpiryTimer(e *Element[T], timeout uint64) {
	hs.DeactivateTimer(e)
	hs.ActivateTimer(e, TimerExpiry, e.LastUpdateTimeStamp+timeout)
}

// FirstTimer - earliest active timer, nil if none
func (hs *Handlespace[T]) FirstTimer() *Element[T] {
	return hs.timerOf(hs.timers.First())
}

// NextTimer - following active timer, nil at the end
func (hs *Handlespace[T]) NextTimer(e *Element[T]) *Element[T] {
	return hs.timerOf(hs.timers.Next(e.timer))
}

// Timers - number of active timers
func (hs *Handlespace[T]) Timers() int {
	return hs.timers.Count()
}

// NextTimerTimeStamp - when the earliest timer is due, false if no
// timer is active
func (hs *Handlespace[T]) NextTimerTimeStamp() (uint64, bool) {
	e := hs.FirstTimer()
	if nil == e {
		return 0, false
	}
	return e.TimerTimeStamp, true
}

func (hs *Handlespace[T]) timerOf(h rbtree.Handle) *Element[T] {
	if rbtree.Null == h {
		return nil
	}
	return hs.timers.Item(h).e
}

// PurgeExpiredPoolElements - deregister every element whose expiry
// timer is due at now
//
// timers of other kinds are left for the caller to handle
func (hs *Handlespace[T]) PurgeExpiredPoolElements(now uint64) int {
	purged := 0
	e := hs.FirstTimer()
	for nil != e && e.TimerTimeStamp <= now {
		next := hs.NextTimer(e)
		if TimerExpiry == e.TimerCode {
			hs.DeregisterPoolElementByPtr(e)
			purged += 1
		}
		e = next
	}
	return purged
}
