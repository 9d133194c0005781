// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

// Insert - insert a new node into the tree
//
// returns the handle of the new node and true, or if an equal item is
// already present the handle of that node and false
func (tree *Tree[T]) Insert(item T, value uint64) (Handle, bool) {
	parent := Null
	x := tree.root
	c := 0
	for Null != x {
		parent = x
		c = item.Compare(tree.nodes[x].item)
		switch {
		case c < 0:
			x = tree.nodes[x].left
		case c > 0:
			x = tree.nodes[x].right
		default:
			return x, false
		}
	}

	z := tree.newNode(item, value)
	tree.nodes[z].parent = parent

	switch {
	case Null == parent:
		tree.root = z
		tree.linkAfter(z, Null)
	case c < 0:
		tree.nodes[parent].left = z
		tree.linkAfter(z, tree.nodes[parent].prev)
	default:
		tree.nodes[parent].right = z
		tree.linkAfter(z, parent)
	}

	for p := parent; Null != p; p = tree.nodes[p].parent {
		tree.nodes[p].valueSum += value
	}

	tree.insertFixup(z)
	tree.count += 1
	return z, true
}

// put z into the list immediately after p
func (tree *Tree[T]) linkAfter(z Handle, p Handle) {
	n := tree.nodes[p].next
	tree.nodes[z].prev = p
	tree.nodes[z].next = n
	tree.nodes[p].next = z
	tree.nodes[n].prev = z
}

// restore the red-black properties after inserting a red node
func (tree *Tree[T]) insertFixup(z Handle) {
	for tree.nodes[tree.nodes[z].parent].red {
		p := tree.nodes[z].parent
		g := tree.nodes[p].parent
		if p == tree.nodes[g].left {
			u := tree.nodes[g].right
			if tree.nodes[u].red {
				tree.nodes[p].red = false
				tree.nodes[u].red = false
				tree.nodes[g].red = true
				z = g
				continue
			}
			if z == tree.nodes[p].right {
				z = p
				tree.rotateLeft(z)
				p = tree.nodes[z].parent
			}
			tree.nodes[p].red = false
			tree.nodes[g].red = true
			tree.rotateRight(g)
		} else {
			u := tree.nodes[g].left
			if tree.nodes[u].red {
				tree.nodes[p].red = false
				tree.nodes[u].red = false
				tree.nodes[g].red = true
				z = g
				continue
			}
			if z == tree.nodes[p].left {
				z = p
				tree.rotateRight(z)
				p = tree.nodes[z].parent
			}
			tree.nodes[p].red = false
			tree.nodes[g].red = true
			tree.rotateLeft(g)
		}
	}
	tree.nodes[tree.root].red = false
}

// x moves down to the left, its right child takes its place
func (tree *Tree[T]) rotateLeft(x Handle) {
	y := tree.nodes[x].right
	b := tree.nodes[y].left

	tree.nodes[x].right = b
	if Null != b {
		tree.nodes[b].parent = x
	}
	tree.replaceChild(x, y)
	tree.nodes[y].left = x
	tree.nodes[x].parent = y

	tree.recompute(x)
	tree.recompute(y)
}

// x moves down to the right, its left child takes its place
func (tree *Tree[T]) rotateRight(x Handle) {
	y := tree.nodes[x].left
	b := tree.nodes[y].right

	tree.nodes[x].left = b
	if Null != b {
		tree.nodes[b].parent = x
	}
	tree.replaceChild(x, y)
	tree.nodes[y].right = x
	tree.nodes[x].parent = y

	tree.recompute(x)
	tree.recompute(y)
}

// make y occupy the position of x under x's parent
func (tree *Tree[T]) replaceChild(x Handle, y Handle) {
	p := tree.nodes[x].parent
	tree.nodes[y].parent = p
	switch {
	case Null == p:
		tree.root = y
	case x == tree.nodes[p].left:
		tree.nodes[p].left = y
	default:
		tree.nodes[p].right = y
	}
}

// recalculate a node's sum from its children
func (tree *Tree[T]) recompute(h Handle) {
	n := &tree.nodes[h]
	n.valueSum = tree.nodes[n.left].valueSum + n.value + tree.nodes[n.right].valueSum
}
