// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/storage"
)

type metadata struct {
	store   *storage.Store
	hs      *handlespace.Handlespace[string]
	failed  int
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp()
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "hsdump"
	app.Usage = "inspect a registrar handlespace snapshot"
	app.Version = version
	app.HideVersion = true

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "snapshot, s",
			Value: "",
			Usage: "*snapshot database `DIRECTORY`",
		},
		cli.StringFlag{
			Name:  "identifier, i",
			Value: "0",
			Usage: " registrar `ID` treated as home, decimal or 0x hex",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "pools",
			Usage:  "list pools with their policy and element count",
			Action: runPools,
		},
		{
			Name:      "elements",
			Usage:     "list pool elements",
			ArgsUsage: "[POOL-HANDLE]",
			Action:    runElements,
		},
		{
			Name:   "owners",
			Usage:  "elements and ownership checksum per home registrar",
			Action: runOwners,
		},
		{
			Name:   "checksum",
			Usage:  "handlespace checksums, stored against recomputed",
			Action: runChecksum,
		},
		{
			Name:   "verify",
			Usage:  "check the consistency of the restored handlespace",
			Action: runVerify,
		},
		{
			Name:   "dump",
			Usage:  "print every index of the handlespace",
			Action: runDump,
		},
		{
			Name:  "version",
			Usage: "display hsdump version",
			Action: func(c *cli.Context) error {
				fmt.Fprintln(c.App.Writer, version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command || "h" == command {
			return nil
		}

		directory := c.GlobalString("snapshot")
		if "" == directory {
			return fmt.Errorf("snapshot directory is required")
		}

		identifier, err := strconv.ParseUint(c.GlobalString("identifier"), 0, 32)
		if nil != err {
			return fmt.Errorf("invalid identifier: %q  error: %s", c.GlobalString("identifier"), err)
		}

		if verbose {
			fmt.Fprintf(e, "reading snapshot: %s\n", directory)
		}

		store, err := storage.Open(directory, storage.ReadOnly)
		if nil != err {
			return err
		}

		hs, failed, err := load(store, uint32(identifier))
		if nil != err {
			store.Close()
			return err
		}
		if verbose && failed > 0 {
			fmt.Fprintf(e, "records not restored: %d\n", failed)
		}

		c.App.Metadata["config"] = &metadata{
			store:   store,
			hs:      hs,
			failed:  failed,
			verbose: verbose,
			e:       e,
			w:       w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		m.store.Close()
		return nil
	}

	return app
}

// restore all records into a fresh handlespace
func load(store *storage.Store, identifier uint32) (*handlespace.Handlespace[string], int, error) {
	hs := handlespace.New[string](identifier, &handlespace.Configuration[string]{})

	failed := 0
	err := store.Load(func(r *storage.Record) error {
		if _, err := hs.RegisterPoolElement(&r.Registration, r.LastUpdate, "snapshot"); nil != err {
			failed += 1
		}
		return nil
	})
	if nil != err {
		return nil, 0, err
	}
	return hs, failed, nil
}
