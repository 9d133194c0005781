// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rbtree - a red-black balanced tree with a value sum
// augmentation and a doubly linked list through the nodes in key
// order
//
// Note: an individual tree is not thread safe, so either access only
//       in a single go routine or use mutex/rwmutex to restrict
//       access.
//
// Nodes are held in an arena and referenced by a Handle that stays
// valid until the node is removed.  Handle zero is a sentinel which
// takes the place of every leaf and also serves as the head of the
// linked list, so the rebalancing code needs no nil checks.
//
// Each node carries a Value and the sum of Value over its sub-tree,
// this allows NodeByValue to pick a node in proportion to its Value
// in O(log n), which is the basis of the randomised pool policies.
//
// The balancing algorithms follow Cormen, Leiserson, Rivest and Stein
// "Introduction to Algorithms" chapter 13.
package rbtree
