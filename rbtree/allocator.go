// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

// a node in the tree
type node[T Item[T]] struct {
	item     T      // key part for ordering
	value    uint64 // weight of this node
	valueSum uint64 // value of this node and both sub-trees
	parent   Handle // points to parent node
	left     Handle // left sub-tree, free list link when unused
	right    Handle // right sub-tree
	prev     Handle // in-order predecessor
	next     Handle // in-order successor
	red      bool
	linked   bool
}

// allocate a new node, reuses reclaimed slots if any are available
//
// the arena may be reallocated, so no node pointers may be held
// across this call
func (tree *Tree[T]) newNode(item T, value uint64) Handle {
	h := tree.free
	if Null != h {
		tree.free = tree.nodes[h].left
	} else {
		tree.nodes = append(tree.nodes, node[T]{})
		h = Handle(len(tree.nodes) - 1)
	}
	tree.nodes[h] = node[T]{
		item:     item,
		value:    value,
		valueSum: value,
		red:      true,
		linked:   true,
	}
	return h
}

// reclaim a node and keep it on the free list
func (tree *Tree[T]) freeNode(h Handle) {
	var zero T
	tree.nodes[h] = node[T]{
		item: zero,
		left: tree.free, // use as free list pointer
	}
	tree.free = h
}
