// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// editors often write a file in several steps
const reloadDelay = 2 * time.Second

// reloader - re-read the static pools after the configuration file
// changes
type reloader struct {
	log               *logger.L
	configurationFile string
	channel           WatcherChannel
	static            *staticPools
}

func (r *reloader) Run(args interface{}, shutdown <-chan struct{}) {
	r.log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-r.channel.remove:
			r.log.Warn("configuration file removed, static pools unchanged")

		case <-r.channel.change:
			select {
			case <-shutdown:
				break loop
			case <-time.After(reloadDelay):
			}
			r.reload()
		}
	}
	r.log.Info("stopped")
}

func (r *reloader) reload() {
	c, err := getConfiguration(r.configurationFile)
	if nil != err {
		r.log.Errorf("configuration error: %s, static pools unchanged", err)
		return
	}
	if err := r.static.Set(c.StaticPools); nil != err {
		r.log.Errorf("static pools error: %s", err)
		return
	}
	r.log.Infof("static elements: %d", r.static.Count())
}
