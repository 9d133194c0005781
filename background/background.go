// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - start and stop a set of long running
// goroutines together
package background

import (
	"time"
)

// Process - a background process runs until shutdown is closed
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for a started set
type T struct {
	shutdown []chan struct{}
	finished []chan struct{}
}

// Start - run each process in its own goroutine
func Start(processes Processes, args interface{}) *T {
	t := &T{
		shutdown: make([]chan struct{}, len(processes)),
		finished: make([]chan struct{}, len(processes)),
	}

	for i, p := range processes {
		shutdown := make(chan struct{})
		finished := make(chan struct{})
		t.shutdown[i] = shutdown
		t.finished[i] = finished
		go func(p Process) {
			defer close(finished)
			p.Run(args, shutdown)
		}(p)
	}
	return t
}

// Stop - signal every process and wait for all to return
func (t *T) Stop() {
	for _, shutdown := range t.shutdown {
		close(shutdown)
	}
	for _, finished := range t.finished {
		<-finished
	}
}

// periodic - calls a function on every tick
type periodic struct {
	interval time.Duration
	f        func()
}

// Every - a process calling f once per interval until shutdown
func Every(interval time.Duration, f func()) Process {
	return &periodic{
		interval: interval,
		f:        f,
	}
}

func (p *periodic) Run(args interface{}, shutdown <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.f()
		case <-shutdown:
			return
		}
	}
}
