// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"fmt"

	"github.com/bitmark-inc/rserpoold/rbtree"
)

// Verify - full consistency check of every index and running total
//
// O(n), for tests and debugging
func (hs *Handlespace[T]) Verify() error {
	for name, err := range map[string]error{
		"pool":       hs.pools.Verify(),
		"timer":      hs.timers.Verify(),
		"connection": hs.connections.Verify(),
		"ownership":  hs.ownerships.Verify(),
	} {
		if nil != err {
			return fmt.Errorf("%s index: %s", name, err)
		}
	}

	elements := 0
	timers := 0
	connections := 0
	ownerships := 0
	for pool := hs.FirstPool(); nil != pool; pool = hs.NextPool(pool) {
		if err := pool.elements.Verify(); nil != err {
			return fmt.Errorf("pool %s name index: %s", pool.Handle, err)
		}
		if err := pool.selection.Verify(); nil != err {
			return fmt.Errorf("pool %s selection index: %s", pool.Handle, err)
		}
		if pool.elements.IsEmpty() {
			return fmt.Errorf("pool %s is empty", pool.Handle)
		}
		if pool.elements.Count() != pool.selection.Count() {
			return fmt.Errorf("pool %s: %d elements but %d selectable", pool.Handle, pool.elements.Count(), pool.selection.Count())
		}

		for e := pool.FirstElement(); nil != e; e = pool.NextElement(e) {
			if e.Pool != pool {
				return fmt.Errorf("element %s: wrong pool", e)
			}
			if !pool.selection.IsLinked(e.selection) || pool.selection.Item(e.selection).e != e {
				return fmt.Errorf("element %s: not in selection index", e)
			}
			if pool.Policy.Value(&e.State) != pool.selection.Value(e.selection) {
				return fmt.Errorf("element %s: stale selection value", e)
			}
			if e.Checksum != elementChecksum(pool, e.Identifier) {
				return fmt.Errorf("element %s: wrong checksum", e)
			}
			if err := checkLink(hs.timers, e.timer, e, TimerNone != e.TimerCode); nil != err {
				return fmt.Errorf("element %s: timer %s", e, err)
			}
			if err := checkLink(hs.connections, e.connection, e, e.ConnectionSocket > 0); nil != err {
				return fmt.Errorf("element %s: connection %s", e, err)
			}
			if err := checkLink(hs.ownerships, e.ownership, e, UndefinedRegistrar != e.HomeRegistrar); nil != err {
				return fmt.Errorf("element %s: ownership %s", e, err)
			}
			elements += 1
			if e.HasTimer() {
				timers += 1
			}
			if rbtree.Null != e.connection {
				connections += 1
			}
			if rbtree.Null != e.ownership {
				ownerships += 1
			}
		}
	}

	if elements != hs.poolElements {
		return fmt.Errorf("element count: %d expected: %d", hs.poolElements, elements)
	}
	if timers != hs.timers.Count() {
		return fmt.Errorf("timer count: %d expected: %d", hs.timers.Count(), timers)
	}
	if connections != hs.connections.Count() {
		return fmt.Errorf("connection count: %d expected: %d", hs.connections.Count(), connections)
	}
	if ownerships != hs.ownerships.Count() {
		return fmt.Errorf("ownership count: %d expected: %d", hs.ownerships.Count(), ownerships)
	}

	if sum := hs.computeHandlespaceAccumulator(); sum != hs.sum {
		return fmt.Errorf("handlespace checksum: $%04x expected: $%04x", hs.sum.Finish(), sum.Finish())
	}
	owned := 0
	for owner, t := range hs.owners {
		if sum := hs.computeOwnershipAccumulator(owner); sum != t.sum {
			return fmt.Errorf("owner $%08x checksum: $%04x expected: $%04x", owner, t.sum.Finish(), sum.Finish())
		}
		owned += t.count
	}
	if owned != ownerships {
		return fmt.Errorf("owner totals: %d expected: %d", owned, ownerships)
	}
	return nil
}

// linked must match whether the element is present in the index
func checkLink[I interface {
	rbtree.Item[I]
	element() any
}](tree *rbtree.Tree[I], h rbtree.Handle, e any, linked bool) error {
	if !linked {
		if rbtree.Null != h {
			return fmt.Errorf("linked but should not be")
		}
		return nil
	}
	if !tree.IsLinked(h) || tree.Item(h).element() != e {
		return fmt.Errorf("not linked")
	}
	return nil
}
