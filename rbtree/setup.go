// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

// Item - a key item must order itself against another and print
// itself for debugging
type Item[T any] interface {
	Compare(T) int // for left/right ordering of items
	String() string
}

// Handle - stable reference to a node of a tree
type Handle int32

// Null - the sentinel handle, used for "no node"
const Null Handle = 0

// Tree - type to hold the arena and root node of a tree
type Tree[T Item[T]] struct {
	nodes []node[T]
	root  Handle
	free  Handle
	count int
}

// New - create an initially empty tree
func New[T Item[T]]() *Tree[T] {
	tree := &Tree[T]{}
	tree.Clear()
	return tree
}

// Clear - drop all nodes, invalidating every handle
func (tree *Tree[T]) Clear() {
	tree.nodes = make([]node[T], 1, 16)
	tree.root = Null
	tree.free = Null
	tree.count = 0
}

// IsEmpty - true if tree contains no data
func (tree *Tree[T]) IsEmpty() bool {
	return Null == tree.root
}

// Count - number of nodes currently in the tree
func (tree *Tree[T]) Count() int {
	return tree.count
}

// ValueSum - total of all node values
func (tree *Tree[T]) ValueSum() uint64 {
	return tree.nodes[tree.root].valueSum
}

// Root - handle of the root node
func (tree *Tree[T]) Root() Handle {
	return tree.root
}

// IsLinked - true if the handle refers to a node currently in the tree
func (tree *Tree[T]) IsLinked(h Handle) bool {
	return h > Null && int(h) < len(tree.nodes) && tree.nodes[h].linked
}

// Item - read the key item of a node
func (tree *Tree[T]) Item(h Handle) T {
	return tree.nodes[h].item
}

// Value - read the value of a node
func (tree *Tree[T]) Value(h Handle) uint64 {
	return tree.nodes[h].value
}
