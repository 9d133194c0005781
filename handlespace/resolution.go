// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
)

// HandleResolution - select up to maxItems elements of a pool
//
// the first maxIncrement selected elements are counted as used and
// move on in the policy order, zero selects the default of the pool's
// policy
func (hs *Handlespace[T]) HandleResolution(handle poolhandle.Handle, maxItems int, maxIncrement int) ([]*Element[T], error) {
	pool := hs.FindPool(handle)
	if nil == pool {
		return nil, fault.ErrNotFound
	}
	if maxItems < 1 {
		return []*Element[T]{}, nil
	}
	if maxIncrement < 1 {
		maxIncrement = pool.Policy.DefaultMaxIncrement
	}

	switch pool.Policy.Kind {
	case policy.ValueTree:
		return hs.selectByValue(pool, maxItems, maxIncrement), nil
	default:
		return selectBySortingOrder(pool, maxItems, maxIncrement), nil
	}
}

// take the head of the selection order, then move the first
// maxIncrement to their new positions
func selectBySortingOrder[T any](pool *Pool[T], maxItems int, maxIncrement int) []*Element[T] {
	n := pool.Elements()
	if maxItems < n {
		n = maxItems
	}
	selected := make([]*Element[T], 0, n)
	for e := pool.FirstSelection(); nil != e && len(selected) < n; e = pool.NextSelection(e) {
		selected = append(selected, e)
	}

	if maxIncrement > n {
		maxIncrement = n
	}
	for _, e := range selected[:maxIncrement] {
		pool.unlinkSelection(e)
		e.SeqNumber = pool.nextSeqNumber()
		e.SelectionCounter += 1
		pool.Policy.Update(&e.State)
		pool.linkSelection(e)
	}
	return selected
}

// draw proportionally to the element values, without replacement
func (hs *Handlespace[T]) selectByValue(pool *Pool[T], maxItems int, maxIncrement int) []*Element[T] {
	n := pool.Elements()
	if maxItems < n {
		n = maxItems
	}
	selected := make([]*Element[T], 0, n)
	for i := 0; i < n; i += 1 {
		sum := pool.selection.ValueSum()
		if sum < 1 {
			break
		}
		h := pool.selection.NodeByValue(hs.random.Uint64() % sum)
		e := pool.selection.Item(h).e
		pool.unlinkSelection(e)

		e.SeqNumber = pool.nextSeqNumber()
		e.SelectionCounter += 1
		if i < maxIncrement {
			pool.Policy.Update(&e.State)
		}
		selected = append(selected, e)
	}

	for _, e := range selected {
		pool.linkSelection(e)
	}
	return selected
}
