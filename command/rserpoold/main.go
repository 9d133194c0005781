// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/rserpoold/background"
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/registrar"
	"github.com/bitmark-inc/rserpoold/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last resort logging of internal state failures
	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// a registrar needs a non-zero identifier, make one up if
	// none was configured
	if 0 == theConfiguration.Identifier {
		rand.Seed(time.Now().UnixNano())
		for 0 == theConfiguration.Identifier {
			theConfiguration.Identifier = rand.Uint32()
		}
		log.Warnf("random registrar identifier: $%08x", theConfiguration.Identifier)
	}

	registrarConfiguration := theConfiguration.registrarConfiguration()

	// optional snapshot of the handlespace
	if theConfiguration.Snapshot.Enable {
		log.Infof("snapshot: %q", theConfiguration.Snapshot.Directory)
		store, err := storage.Open(theConfiguration.Snapshot.Directory, storage.ReadWrite)
		if nil != err {
			log.Criticalf("snapshot open error: %s", err)
			exitwithstatus.Message("snapshot open error: %s", err)
		}
		defer store.Close()
		registrarConfiguration.Snapshot = store
	}

	notifications := logger.New("notify")
	registrarConfiguration.Notify = func(n handlespace.Notification) {
		notifications.Debugf("%s", n)
	}

	r, err := registrar.New(registrarConfiguration)
	if nil != err {
		log.Criticalf("registrar initialise error: %s", err)
		exitwithstatus.Message("registrar initialise error: %s", err)
	}

	n, err := r.Restore()
	if nil != err {
		log.Criticalf("snapshot restore error: %s", err)
		exitwithstatus.Message("snapshot restore error: %s", err)
	}
	log.Infof("restored elements: %d", n)

	static := newStaticPools(logger.New("static"), r)
	if err := static.Set(theConfiguration.StaticPools); nil != err {
		log.Criticalf("static pools error: %s", err)
		exitwithstatus.Message("static pools error: %s", err)
	}
	log.Infof("static elements: %d", static.Count())

	r.Start()
	defer r.Stop()

	refresh := background.Start(background.Processes{
		static,
	}, nil)
	defer refresh.Stop()

	// reload static pools when the configuration file changes
	if theConfiguration.WatchConfiguration {
		channel := newWatcherChannel()
		watcher, err := newFileWatcher(configurationFile, logger.New(fileWatcherLoggerPrefix), channel)
		if nil != err {
			log.Criticalf("file watcher error: %s", err)
			exitwithstatus.Message("file watcher error: %s", err)
		}
		if err := watcher.Start(); nil != err {
			log.Criticalf("file watcher start error: %s", err)
			exitwithstatus.Message("file watcher start error: %s", err)
		}
		defer watcher.Stop()

		reload := background.Start(background.Processes{
			&reloader{
				log:               logger.New("reload"),
				configurationFile: configurationFile,
				channel:           channel,
				static:            static,
			},
		}, nil)
		defer reload.Stop()
	}

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	log.Infof("statistics: %+v", r.Statistics())
	_ = r.Access(func(hs *registrar.Handlespace) error {
		log.Infof("elements at shutdown: %d  checksum: $%04x", hs.PoolElements(), hs.HandlespaceChecksum())
		return nil
	})
}
