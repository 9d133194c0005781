// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/fixtures"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/storage"
	"github.com/bitmark-inc/rserpoold/transport"
)

func populated(t *testing.T) *handlespace.Handlespace[int] {
	hs := handlespace.New[int](1, nil)
	for id := uint32(1); id <= 3; id += 1 {
		r := &handlespace.Registration{
			Handle:           fixtures.Handle("EchoPool"),
			HomeRegistrar:    id,
			Identifier:       id,
			RegistrationLife: 5000000,
			Settings:         policy.Settings{Type: policy.LeastUsedDPF, Load: id * 1000, LoadDPF: 77, Distance: 12},
			UserTransport:    transport.New(transport.SCTP, 7, 0, net.IPv4(10, 0, 0, byte(id)), net.ParseIP("2001:db8::1")),
			ConnectionSocket: 3,
		}
		if 2 == id {
			r.RegistratorTransport = transport.New(transport.SCTP, 9899, 0, net.IPv4(10, 9, 9, 9))
		}
		_, err := hs.RegisterPoolElement(r, uint64(id)*100, 0)
		assert.Nil(t, err, "register: %d", id)
	}
	return hs
}

func TestSaveLoad(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	database := fixtures.Directory("snapshot.leveldb")
	s, err := storage.Open(database, storage.ReadWrite)
	if !assert.Nil(t, err, "open") {
		return
	}

	hs := populated(t)
	expected := storage.Records(hs)
	assert.Len(t, expected, 3, "records")

	err = s.Save(expected)
	assert.Nil(t, err, "save")

	// a second save replaces rather than adds
	err = s.Save(expected[1:])
	assert.Nil(t, err, "save")
	s.Close()

	s, err = storage.Open(database, storage.ReadOnly)
	if !assert.Nil(t, err, "reopen") {
		return
	}
	defer s.Close()

	actual := []storage.Record{}
	err = s.Load(func(r *storage.Record) error {
		actual = append(actual, *r)
		return nil
	})
	assert.Nil(t, err, "load")

	if assert.Len(t, actual, 2, "loaded") {
		for i := range actual {
			e, a := expected[i+1], actual[i]
			assert.Equal(t, e.Handle, a.Handle, "%d: handle", i)
			assert.Equal(t, e.Identifier, a.Identifier, "%d: identifier", i)
			assert.Equal(t, e.HomeRegistrar, a.HomeRegistrar, "%d: owner", i)
			assert.Equal(t, e.RegistrationLife, a.RegistrationLife, "%d: life", i)
			assert.Equal(t, e.LastUpdate, a.LastUpdate, "%d: last update", i)
			assert.Equal(t, e.Settings, a.Settings, "%d: settings", i)
			assert.True(t, e.UserTransport.Equal(a.UserTransport), "%d: user transport: %s", i, a.UserTransport)
			assert.True(t, e.RegistratorTransport.Equal(a.RegistratorTransport), "%d: registrator transport", i)
			assert.Equal(t, handlespace.NoSocket, a.ConnectionSocket, "%d: socket", i)
		}
	}

	err = s.Save(expected)
	assert.Equal(t, fault.ErrInvalidSnapshotRecord, err, "save to read only")
}

func TestLoadStopsOnError(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	s, err := storage.Open(fixtures.Directory("stop.leveldb"), storage.ReadWrite)
	if !assert.Nil(t, err, "open") {
		return
	}
	defer s.Close()

	assert.Nil(t, s.Save(storage.Records(populated(t))), "save")

	n := 0
	err = s.Load(func(r *storage.Record) error {
		n += 1
		return fault.ErrNoResources
	})
	assert.Equal(t, fault.ErrNoResources, err, "error")
	assert.Equal(t, 1, n, "calls")
}

func TestVersion(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	database := fixtures.Directory("version.leveldb")

	_, err := storage.Open(database, storage.ReadOnly)
	assert.NotNil(t, err, "read only open of missing database")

	db, err := leveldb.OpenFile(database, nil)
	if !assert.Nil(t, err, "create") {
		return
	}
	err = db.Put([]byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}, []byte{0, 0, 0x7f, 0xff}, nil)
	assert.Nil(t, err, "put version")
	db.Close()

	_, err = storage.Open(database, storage.ReadWrite)
	assert.Equal(t, fault.ErrInvalidSnapshotVersion, err, "newer version")
}

func TestClosed(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	s, err := storage.Open(fixtures.Directory("closed.leveldb"), storage.ReadWrite)
	if !assert.Nil(t, err, "open") {
		return
	}
	s.Close()

	assert.Equal(t, fault.ErrNotInitialised, s.Save(nil), "save")
	assert.Equal(t, fault.ErrNotInitialised, s.Load(func(*storage.Record) error { return nil }), "load")
}
