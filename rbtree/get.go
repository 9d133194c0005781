// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

// NodeByValue - weighted descent
//
// for v in [0, ValueSum) the node returned is the one whose range
// [sum of values before it, that sum + Value) contains v, so a
// uniform v picks each node in proportion to its Value.  A v beyond
// the total returns the last node reached on the way down.
func (tree *Tree[T]) NodeByValue(v uint64) Handle {
	x := tree.root
	for Null != x {
		n := &tree.nodes[x]
		leftSum := tree.nodes[n.left].valueSum
		if v < leftSum {
			x = n.left
			continue
		}
		if v-leftSum < n.value {
			return x
		}
		v -= leftSum + n.value
		if Null == n.right {
			return x
		}
		x = n.right
	}
	return Null
}
