// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registrar - the single writer in front of a handlespace
//
// All handlespace access is serialised by the registrar's mutex, either
// through the request methods or through Access.  A background
// maintenance process purges expired elements, finishes timed out
// takeovers, forwards change notifications and saves snapshots.
package registrar
