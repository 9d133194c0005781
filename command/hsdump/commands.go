// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/poolhandle"
)

func getMetadata(c *cli.Context) (*metadata, error) {
	m, ok := c.App.Metadata["config"].(*metadata)
	if !ok {
		return nil, fault.ErrNotInitialised
	}
	return m, nil
}

func runPools(c *cli.Context) error {
	m, err := getMetadata(c)
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "%-32s  %-40s  %-8s  %s\n", "handle", "policy", "protocol", "elements")
	for pool := m.hs.FirstPool(); nil != pool; pool = m.hs.NextPool(pool) {
		fmt.Fprintf(m.w, "%-32s  %-40s  %-8s  %d\n", pool.Handle, pool.Policy.Name, pool.Protocol, pool.Elements())
	}
	if m.verbose {
		fmt.Fprintf(m.e, "pools: %d  elements: %d\n", m.hs.Pools(), m.hs.PoolElements())
	}
	return nil
}

func runElements(c *cli.Context) error {
	m, err := getMetadata(c)
	if nil != err {
		return err
	}

	if c.NArg() > 0 {
		handle, err := poolhandle.FromString(c.Args().Get(0))
		if nil != err {
			return err
		}
		pool := m.hs.FindPool(handle)
		if nil == pool {
			return fault.ErrNotFound
		}
		printElements(m, pool)
		return nil
	}

	for pool := m.hs.FirstPool(); nil != pool; pool = m.hs.NextPool(pool) {
		printElements(m, pool)
	}
	return nil
}

func printElements(m *metadata, pool *handlespace.Pool[string]) {
	for e := pool.FirstElement(); nil != e; e = pool.NextElement(e) {
		updated := time.Unix(0, int64(e.LastUpdateTimeStamp)*int64(time.Microsecond)).UTC()
		fmt.Fprintf(m.w, "%s/$%08x  home: $%08x  %s  %s  updated: %s  life: %s\n",
			pool.Handle, e.Identifier, e.HomeRegistrar, e.Settings, e.UserTransport,
			updated.Format(time.RFC3339), time.Duration(e.RegistrationLife)*time.Microsecond)
	}
}

func runOwners(c *cli.Context) error {
	m, err := getMetadata(c)
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "%-10s  %-8s  %s\n", "home", "elements", "checksum")
	for e := m.hs.FirstOwnership(); nil != e; {
		owner := e.HomeRegistrar
		n := m.hs.OwnershipNodesForIdentifier(owner)
		fmt.Fprintf(m.w, "$%08x  %8d  $%04x\n", owner, n, m.hs.OwnershipChecksum(owner))

		// skip the rest of this owner's elements
		for nil != e && e.HomeRegistrar == owner {
			e = m.hs.NextOwnership(e)
		}
	}
	return nil
}

func runChecksum(c *cli.Context) error {
	m, err := getMetadata(c)
	if nil != err {
		return err
	}

	own := m.hs.HomeRegistrar()
	stored := m.hs.HandlespaceChecksum()
	computed := m.hs.ComputeHandlespaceChecksum()
	ownStored := m.hs.OwnershipChecksum(own)
	ownComputed := m.hs.ComputeOwnershipChecksum(own)

	fmt.Fprintf(m.w, "handlespace:      $%04x  computed: $%04x\n", stored, computed)
	fmt.Fprintf(m.w, "owned $%08x: $%04x  computed: $%04x\n", own, ownStored, ownComputed)

	if stored != computed || ownStored != ownComputed {
		return fmt.Errorf("checksum mismatch")
	}
	return nil
}

func runVerify(c *cli.Context) error {
	m, err := getMetadata(c)
	if nil != err {
		return err
	}

	if err := m.hs.Verify(); nil != err {
		return err
	}
	fmt.Fprintf(m.w, "verified: %d pools  %d elements  %d not restored\n", m.hs.Pools(), m.hs.PoolElements(), m.failed)
	return nil
}

func runDump(c *cli.Context) error {
	m, err := getMetadata(c)
	if nil != err {
		return err
	}

	m.hs.Print(m.w, handlespace.PrintAll)
	return nil
}
