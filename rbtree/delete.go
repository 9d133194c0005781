// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

import (
	"github.com/bitmark-inc/rserpoold/fault"
)

// Remove - unlink a node from the tree and return its item
//
// the handle becomes invalid and may be reused by a later Insert,
// removing a node that is not linked is fatal
func (tree *Tree[T]) Remove(z Handle) T {
	if !tree.IsLinked(z) {
		fault.Panicf("rbtree: remove of unlinked node: %d", z)
	}

	item := tree.nodes[z].item

	y := z
	yRed := tree.nodes[y].red
	x := Null

	switch {
	case Null == tree.nodes[z].left:
		x = tree.nodes[z].right
		tree.transplant(z, x)
	case Null == tree.nodes[z].right:
		x = tree.nodes[z].left
		tree.transplant(z, x)
	default:
		// two children: the successor has no left child
		y = tree.nodes[z].next
		yRed = tree.nodes[y].red
		x = tree.nodes[y].right
		if z == tree.nodes[y].parent {
			tree.nodes[x].parent = y
		} else {
			tree.transplant(y, x)
			tree.nodes[y].right = tree.nodes[z].right
			tree.nodes[tree.nodes[y].right].parent = y
		}
		tree.transplant(z, y)
		tree.nodes[y].left = tree.nodes[z].left
		tree.nodes[tree.nodes[y].left].parent = y
		tree.nodes[y].red = tree.nodes[z].red
	}

	// every node whose sub-tree changed lies on this path
	for p := tree.nodes[x].parent; Null != p; p = tree.nodes[p].parent {
		tree.recompute(p)
	}

	if !yRed {
		tree.deleteFixup(x)
	}

	// sentinel parent is only meaningful during the fixup
	tree.nodes[Null].parent = Null
	tree.nodes[Null].red = false

	prev := tree.nodes[z].prev
	next := tree.nodes[z].next
	tree.nodes[prev].next = next
	tree.nodes[next].prev = prev

	tree.freeNode(z)
	tree.count -= 1
	return item
}

// replace the sub-tree at u by the sub-tree at v
//
// v may be the sentinel, its parent is still set so that the fixup
// can walk upwards from it
func (tree *Tree[T]) transplant(u Handle, v Handle) {
	p := tree.nodes[u].parent
	switch {
	case Null == p:
		tree.root = v
	case u == tree.nodes[p].left:
		tree.nodes[p].left = v
	default:
		tree.nodes[p].right = v
	}
	tree.nodes[v].parent = p
}

// restore the red-black properties after removing a black node
func (tree *Tree[T]) deleteFixup(x Handle) {
	for x != tree.root && !tree.nodes[x].red {
		p := tree.nodes[x].parent
		if x == tree.nodes[p].left {
			w := tree.nodes[p].right
			if tree.nodes[w].red {
				tree.nodes[w].red = false
				tree.nodes[p].red = true
				tree.rotateLeft(p)
				w = tree.nodes[p].right
			}
			if !tree.nodes[tree.nodes[w].left].red && !tree.nodes[tree.nodes[w].right].red {
				tree.nodes[w].red = true
				x = p
				continue
			}
			if !tree.nodes[tree.nodes[w].right].red {
				tree.nodes[tree.nodes[w].left].red = false
				tree.nodes[w].red = true
				tree.rotateRight(w)
				w = tree.nodes[p].right
			}
			tree.nodes[w].red = tree.nodes[p].red
			tree.nodes[p].red = false
			tree.nodes[tree.nodes[w].right].red = false
			tree.rotateLeft(p)
			x = tree.root
		} else {
			w := tree.nodes[p].left
			if tree.nodes[w].red {
				tree.nodes[w].red = false
				tree.nodes[p].red = true
				tree.rotateRight(p)
				w = tree.nodes[p].left
			}
			if !tree.nodes[tree.nodes[w].right].red && !tree.nodes[tree.nodes[w].left].red {
				tree.nodes[w].red = true
				x = p
				continue
			}
			if !tree.nodes[tree.nodes[w].left].red {
				tree.nodes[tree.nodes[w].right].red = false
				tree.nodes[w].red = true
				tree.rotateLeft(w)
				w = tree.nodes[p].left
			}
			tree.nodes[w].red = tree.nodes[p].red
			tree.nodes[p].red = false
			tree.nodes[tree.nodes[w].left].red = false
			tree.rotateRight(p)
			x = tree.root
		}
	}
	tree.nodes[x].red = false
}
