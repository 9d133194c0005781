// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

// Find - exact match for an item, Null if not present
func (tree *Tree[T]) Find(item T) Handle {
	x := tree.root
	for Null != x {
		c := item.Compare(tree.nodes[x].item)
		switch {
		case c < 0:
			x = tree.nodes[x].left
		case c > 0:
			x = tree.nodes[x].right
		default:
			return x
		}
	}
	return Null
}

// NearestPrev - the node with the highest key strictly below item
//
// item need not be present in the tree
func (tree *Tree[T]) NearestPrev(item T) Handle {
	found := Null
	x := tree.root
	for Null != x {
		if item.Compare(tree.nodes[x].item) > 0 {
			found = x
			x = tree.nodes[x].right
		} else {
			x = tree.nodes[x].left
		}
	}
	return found
}

// NearestNext - the node with the lowest key strictly above item
//
// item need not be present in the tree
func (tree *Tree[T]) NearestNext(item T) Handle {
	found := Null
	x := tree.root
	for Null != x {
		if item.Compare(tree.nodes[x].item) < 0 {
			found = x
			x = tree.nodes[x].left
		} else {
			x = tree.nodes[x].right
		}
	}
	return found
}
