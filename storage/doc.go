// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - on-disk snapshot of a handlespace
//
// A LevelDB database holding one record per pool element so that a
// restarted registrar can serve resolutions before its peers have
// resent their handle tables.
//
// Notes:
// 1. ++             = concatenation of byte data
// 2. integers       = big endian
// 3. version key    = 0x00 ++ "VERSION"  → uint32
// 4. element key    = 'E' ++ handle length (1 byte) ++ handle ++ identifier (4 bytes)
// 5. element record = home registrar (4) ++ registration life (8) ++ last update (8)
//                     ++ policy type, weight, load, load degradation,
//                        load dpf, weight dpf, distance (7 × 4)
//                     ++ user transport ++ 0/1 ++ [registrator transport]
// 6. transport      = protocol (1) ++ port (2) ++ flags (4) ++ count (1)
//                     ++ count × (length (1) ++ address)
package storage
