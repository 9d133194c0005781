// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of each registry error so callers can
// compare without partial string matches, the mapping of those
// errors to the numeric codes carried in ASAP/ENRP error parameters,
// and the fatal handling for corrupted internal state.
package fault
