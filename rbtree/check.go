// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rbtree

import (
	"fmt"
)

// Verify - full consistency check of the tree
//
// checks parent pointers, key order, value sums, the red-black
// colouring rules, equal black height on every path, and that the
// linked list matches an in-order walk.  This is O(n) and only
// intended for tests and debugging.
func (tree *Tree[T]) Verify() error {
	s := tree.nodes[Null]
	if s.red {
		return fmt.Errorf("sentinel is red")
	}
	if 0 != s.valueSum || 0 != s.value {
		return fmt.Errorf("sentinel value sum: %d", s.valueSum)
	}
	if Null != tree.root {
		if tree.nodes[tree.root].red {
			return fmt.Errorf("root: %s is red", tree.nodes[tree.root].item)
		}
		if Null != tree.nodes[tree.root].parent {
			return fmt.Errorf("root: %s has a parent", tree.nodes[tree.root].item)
		}
	}

	inOrder := make([]Handle, 0, tree.count)
	if _, err := tree.check(tree.root, Null, &inOrder); nil != err {
		return err
	}

	if len(inOrder) != tree.count {
		return fmt.Errorf("count: %d  nodes: %d", tree.count, len(inOrder))
	}

	p := Null
	for i, h := range inOrder {
		if tree.nodes[p].next != h {
			return fmt.Errorf("list position: %d  next: %d  expected: %d", i, tree.nodes[p].next, h)
		}
		if tree.nodes[h].prev != p {
			return fmt.Errorf("list position: %d  prev: %d  expected: %d", i, tree.nodes[h].prev, p)
		}
		if Null != p && tree.nodes[p].item.Compare(tree.nodes[h].item) >= 0 {
			return fmt.Errorf("order: %s not below: %s", tree.nodes[p].item, tree.nodes[h].item)
		}
		p = h
	}
	if Null != tree.nodes[p].next || tree.nodes[Null].prev != p {
		return fmt.Errorf("list is not terminated at: %d", p)
	}
	return nil
}

// internal: consistency checker, returns the black height
func (tree *Tree[T]) check(h Handle, parent Handle, inOrder *[]Handle) (int, error) {
	if Null == h {
		return 1, nil
	}
	n := tree.nodes[h]
	if !n.linked {
		return 0, fmt.Errorf("node: %d is not linked", h)
	}
	if n.parent != parent {
		return 0, fmt.Errorf("node: %s  parent: %d  expected: %d", n.item, n.parent, parent)
	}
	if n.red && (tree.nodes[n.left].red || tree.nodes[n.right].red) {
		return 0, fmt.Errorf("node: %s is red with a red child", n.item)
	}
	sum := tree.nodes[n.left].valueSum + n.value + tree.nodes[n.right].valueSum
	if n.valueSum != sum {
		return 0, fmt.Errorf("node: %s  value sum: %d  expected: %d", n.item, n.valueSum, sum)
	}

	lh, err := tree.check(n.left, h, inOrder)
	if nil != err {
		return 0, err
	}
	*inOrder = append(*inOrder, h)
	rh, err := tree.check(n.right, h, inOrder)
	if nil != err {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("node: %s  black heights: %d/%d", n.item, lh, rh)
	}
	if !n.red {
		lh += 1
	}
	return lh, nil
}
