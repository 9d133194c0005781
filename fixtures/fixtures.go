// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup
package fixtures

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/transport"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// Directory - scratch area removed by TeardownTestLogger
func Directory(name string) string {
	return filepath.Join(dir, name)
}

func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}

// Handle - pool handle that must be valid
func Handle(name string) poolhandle.Handle {
	h, err := poolhandle.FromString(name)
	if nil != err {
		panic(fmt.Sprintf("pool handle: %q  error: %s", name, err))
	}
	return h
}

// UserTransport - SCTP block with one IPv4 address
func UserTransport(lastOctet byte) *transport.AddressBlock {
	return transport.New(transport.SCTP, 7, 0, net.IPv4(10, 0, 0, lastOctet))
}

// Settings - policy settings with a weight
func Settings(t policy.Type, weight uint32) policy.Settings {
	return policy.Settings{Type: t, Weight: weight}
}
