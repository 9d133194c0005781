// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/rserpoold/fault"
)

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentSnapshotVersion = 0x100

// access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Store - an open snapshot database
type Store struct {
	sync.Mutex
	log      *logger.L
	db       *leveldb.DB
	readOnly bool
}

// Open - open or create the snapshot database
func Open(database string, readOnly bool) (*Store, error) {
	log := logger.New("storage")

	db, version, err := getDB(database, readOnly)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > currentSnapshotVersion {
		log.Criticalf("snapshot version: %d > current version: %d", version, currentSnapshotVersion)
		db.Close()
		return nil, fault.ErrInvalidSnapshotVersion
	}

	if 0 == version {
		if readOnly {
			log.Criticalf("snapshot database: %q has no version", database)
			db.Close()
			return nil, fault.ErrInvalidSnapshotVersion
		}
		// database was empty so tag as current version
		err = putVersion(db, currentSnapshotVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	} else if version < currentSnapshotVersion {
		// a snapshot is only a cache of peer state, old ones are dropped
		log.Warnf("discard snapshot version: %d < current version: %d", version, currentSnapshotVersion)
		if !readOnly {
			err = clearElements(db)
			if nil == err {
				err = putVersion(db, currentSnapshotVersion)
			}
			if nil != err {
				db.Close()
				return nil, err
			}
		}
	}

	log.Infof("opened: %q  read only: %t", database, readOnly)

	return &Store{
		log:      log,
		db:       db,
		readOnly: readOnly,
	}, nil
}

// Close - close the database
func (s *Store) Close() {
	s.Lock()
	defer s.Unlock()

	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// return:
//   database handle
//   version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
