// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package handlespace - the set of pools and pool elements known to
// one registrar
//
// Every pool element is held once and referenced from five ordered
// indices:
//
//   name:       pool handle, then identifier within the pool
//   selection:  per pool, in the order of the pool's policy
//   timer:      timer time stamp, handle, identifier
//   connection: socket, association, handle, identifier
//   ownership:  home registrar, handle, identifier
//
// An element is in the name and selection indices while registered,
// in the timer index while a timer is active, in the connection index
// while it has a socket and in the ownership index while it has a
// home registrar.  All changes go through link/unlink helpers so an
// element is never left in a subset of the indices inconsistent with
// its fields.
//
// A Handlespace is not thread safe and does no I/O.  Time is passed in
// by the caller as microseconds and timers are only acted upon when
// the caller purges them.
package handlespace
