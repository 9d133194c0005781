// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package policy - pool member selection policies
//
// A policy orders the members of a pool for selection.  Sorting order
// policies keep the members sorted so the first entries are the next
// to be chosen; value tree policies give each member a weight and are
// picked at random in proportion to that weight.
//
// All load, degradation and penalty factors are fixed point fractions
// of 0xffffffff, and all arithmetic is integer so that every
// registrar produces identical orderings.
package policy
