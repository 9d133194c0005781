// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"fmt"
	"io"
)

// PrintFields - which parts of the handlespace Print writes
type PrintFields uint32

// print selections
const (
	PrintElements PrintFields = 1 << iota
	PrintSelection
	PrintTimers
	PrintConnections
	PrintOwnerships

	PrintAll = PrintElements | PrintSelection | PrintTimers | PrintConnections | PrintOwnerships
)

// String - summary line
func (hs *Handlespace[T]) String() string {
	return fmt.Sprintf("handlespace $%08x: %d pools %d elements %d owned checksum $%04x",
		hs.homeRegistrar, hs.Pools(), hs.PoolElements(), hs.OwnedPoolElements(), hs.HandlespaceChecksum())
}

// Print - human readable dump
func (hs *Handlespace[T]) Print(w io.Writer, fields PrintFields) {
	fmt.Fprintln(w, hs)

	for pool := hs.FirstPool(); nil != pool; pool = hs.NextPool(pool) {
		fmt.Fprintf(w, "pool %s policy=%s protocol=%s cc=%t elements=%d seq=%d\n",
			pool.Handle, pool.Policy.Name, pool.Protocol, pool.ControlChannel,
			pool.Elements(), pool.globalSeqNumber)
		if 0 != fields&PrintElements {
			for e := pool.FirstElement(); nil != e; e = pool.NextElement(e) {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
		if 0 != fields&PrintSelection {
			i := 0
			for e := pool.FirstSelection(); nil != e; e = pool.NextSelection(e) {
				i += 1
				fmt.Fprintf(w, "  %3d: $%08x value=%d\n", i, e.Identifier, pool.selection.Value(e.selection))
			}
		}
	}

	if 0 != fields&PrintTimers {
		fmt.Fprintf(w, "timers: %d\n", hs.Timers())
		for e := hs.FirstTimer(); nil != e; e = hs.NextTimer(e) {
			fmt.Fprintf(w, "  %d code=%d %s/$%08x\n", e.TimerTimeStamp, e.TimerCode, e.Pool.Handle, e.Identifier)
		}
	}
	if 0 != fields&PrintConnections {
		fmt.Fprintf(w, "connections: %d\n", hs.connections.Count())
		for e := hs.FirstConnection(); nil != e; e = hs.NextConnection(e) {
			fmt.Fprintf(w, "  %d/%d %s/$%08x\n", e.ConnectionSocket, e.ConnectionAssoc, e.Pool.Handle, e.Identifier)
		}
	}
	if 0 != fields&PrintOwnerships {
		fmt.Fprintf(w, "ownerships: %d\n", hs.ownerships.Count())
		for e := hs.FirstOwnership(); nil != e; e = hs.NextOwnership(e) {
			fmt.Fprintf(w, "  $%08x %s/$%08x\n", e.HomeRegistrar, e.Pool.Handle, e.Identifier)
		}
	}
}
