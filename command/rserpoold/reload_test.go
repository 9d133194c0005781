// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/background"
)

const reloadConfiguration = `
return {
  data_directory = ".",
  static_pools = {
    { handle = "EchoPool", identifier = 1, policy = "RoundRobin", protocol = "tcp", port = 7, addresses = { "10.0.0.1" } },
    { handle = "EchoPool", identifier = 2, policy = "RoundRobin", protocol = "tcp", port = 7, addresses = { "10.0.0.2" } },
  },
}
`

func TestReload(t *testing.T) {
	r := newTestRegistrar(t)
	s := newStaticPools(logger.New("static"), r)
	fileName := writeConfiguration(t, reloadConfiguration)

	rl := &reloader{
		log:               logger.New("reload"),
		configurationFile: fileName,
		channel:           newWatcherChannel(),
		static:            s,
	}

	rl.reload()
	assert.Equal(t, 2, s.Count(), "static count")
	assert.Equal(t, 2, elementCount(t, r), "registered")

	// a broken file leaves the pools alone
	assert.Nil(t, ioutil.WriteFile(fileName, []byte("return {"), 0600), "write")
	rl.reload()
	assert.Equal(t, 2, elementCount(t, r), "after broken file")

	assert.Nil(t, ioutil.WriteFile(fileName, []byte(`return { data_directory = "." }`), 0600), "write")
	rl.reload()
	assert.Equal(t, 0, s.Count(), "static count after removal")
	assert.Equal(t, 0, elementCount(t, r), "registered after removal")
}

const shortLifetimeConfiguration = `
return {
  data_directory = ".",
  static_pools = {
    { handle = "EchoPool", identifier = 1, policy = "RoundRobin", protocol = "tcp", port = 7, addresses = { "10.0.0.1" }, lifetime = 1 },
  },
}
`

func TestReloadShortensRefresh(t *testing.T) {
	r := newTestRegistrar(t)
	s := newStaticPools(logger.New("static"), r)
	fileName := writeConfiguration(t, `return { data_directory = "." }`)

	// started without static pools, so on the default interval
	refresh := background.Start(background.Processes{s}, nil)
	defer refresh.Stop()

	rl := &reloader{
		log:               logger.New("reload"),
		configurationFile: fileName,
		channel:           newWatcherChannel(),
		static:            s,
	}

	assert.Nil(t, ioutil.WriteFile(fileName, []byte(shortLifetimeConfiguration), 0600), "write")
	rl.reload()
	assert.Equal(t, 1, elementCount(t, r), "registered")
	assert.Equal(t, 500*time.Millisecond, s.Interval(), "interval")

	// well past the one second lifetime
	time.Sleep(2500 * time.Millisecond)
	r.Maintain()
	assert.Equal(t, 1, elementCount(t, r), "survives its lifetime")
}
