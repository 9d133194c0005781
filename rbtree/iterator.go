// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

// First - return the node with the lowest key value, Null if empty
func (tree *Tree[T]) First() Handle {
	return tree.nodes[Null].next
}

// Last - return the node with the highest key value, Null if empty
func (tree *Tree[T]) Last() Handle {
	return tree.nodes[Null].prev
}

// Next - given a node, return the node with the next highest key
// value or Null if no more nodes
func (tree *Tree[T]) Next(h Handle) Handle {
	if Null == h {
		return Null
	}
	return tree.nodes[h].next
}

// Prev - given a node, return the node with the next lowest key
// value or Null if no more nodes
func (tree *Tree[T]) Prev(h Handle) Handle {
	if Null == h {
		return Null
	}
	return tree.nodes[h].prev
}
