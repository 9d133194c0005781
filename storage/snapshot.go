// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"net"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/transport"
)

const elementPrefix = 'E'

// Record - one saved pool element
type Record struct {
	handlespace.Registration
	LastUpdate uint64
}

// Records - the saveable state of every element of a handlespace
func Records[T any](hs *handlespace.Handlespace[T]) []Record {
	records := make([]Record, 0, hs.PoolElements())
	for pool := hs.FirstPool(); nil != pool; pool = hs.NextPool(pool) {
		for e := pool.FirstElement(); nil != e; e = pool.NextElement(e) {
			records = append(records, Record{
				Registration: handlespace.Registration{
					Handle:               pool.Handle,
					HomeRegistrar:        e.HomeRegistrar,
					Identifier:           e.Identifier,
					RegistrationLife:     e.RegistrationLife,
					Settings:             e.Settings,
					UserTransport:        e.UserTransport,
					RegistratorTransport: e.RegistratorTransport,
					ConnectionSocket:     handlespace.NoSocket,
				},
				LastUpdate: e.LastUpdateTimeStamp,
			})
		}
	}
	return records
}

// Save - replace the stored elements with records in one batch
func (s *Store) Save(records []Record) error {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return fault.ErrNotInitialised
	}
	if s.readOnly {
		return fault.ErrInvalidSnapshotRecord
	}

	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(util.BytesPrefix([]byte{elementPrefix}), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return err
	}

	for i := range records {
		batch.Put(packKey(records[i].Handle, records[i].Identifier), packRecord(&records[i]))
	}

	s.log.Debugf("save: %d records", len(records))
	return s.db.Write(batch, nil)
}

// Load - call f for every stored element in key order, stopping at the
// first error
func (s *Store) Load(f func(r *Record) error) error {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return fault.ErrNotInitialised
	}

	iter := s.db.NewIterator(util.BytesPrefix([]byte{elementPrefix}), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		r, err := unpackRecord(iter.Key(), iter.Value())
		if nil != err {
			s.log.Errorf("load: key: %x  error: %s", iter.Key(), err)
			return err
		}
		if err := f(r); nil != err {
			return err
		}
		n += 1
	}
	s.log.Debugf("load: %d records", n)
	return iter.Error()
}

func clearElements(db *leveldb.DB) error {
	batch := new(leveldb.Batch)
	iter := db.NewIterator(util.BytesPrefix([]byte{elementPrefix}), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return err
	}
	return db.Write(batch, nil)
}

func packKey(handle poolhandle.Handle, identifier uint32) []byte {
	key := make([]byte, 0, 2+handle.Len()+4)
	key = append(key, elementPrefix, byte(handle.Len()))
	key = append(key, handle.Bytes()...)
	return appendUint32(key, identifier)
}

func packRecord(r *Record) []byte {
	buffer := make([]byte, 0, 100)
	buffer = appendUint32(buffer, r.HomeRegistrar)
	buffer = appendUint64(buffer, r.RegistrationLife)
	buffer = appendUint64(buffer, r.LastUpdate)
	for _, v := range []uint32{
		uint32(r.Settings.Type),
		r.Settings.Weight,
		r.Settings.Load,
		r.Settings.LoadDegradation,
		r.Settings.LoadDPF,
		r.Settings.WeightDPF,
		r.Settings.Distance,
	} {
		buffer = appendUint32(buffer, v)
	}
	buffer = packTransport(buffer, r.UserTransport)
	if nil == r.RegistratorTransport {
		return append(buffer, 0)
	}
	buffer = append(buffer, 1)
	return packTransport(buffer, r.RegistratorTransport)
}

func packTransport(buffer []byte, a *transport.AddressBlock) []byte {
	buffer = append(buffer, byte(a.Protocol))
	buffer = appendUint16(buffer, a.Port)
	buffer = appendUint32(buffer, uint32(a.Flags))
	buffer = append(buffer, byte(len(a.Addresses)))
	for _, ip := range a.Addresses {
		if ip4 := ip.To4(); nil != ip4 {
			ip = ip4
		}
		buffer = append(buffer, byte(len(ip)))
		buffer = append(buffer, ip...)
	}
	return buffer
}

func appendUint16(buffer []byte, v uint16) []byte {
	b := [2]byte{}
	binary.BigEndian.PutUint16(b[:], v)
	return append(buffer, b[:]...)
}

func appendUint32(buffer []byte, v uint32) []byte {
	b := [4]byte{}
	binary.BigEndian.PutUint32(b[:], v)
	return append(buffer, b[:]...)
}

func appendUint64(buffer []byte, v uint64) []byte {
	b := [8]byte{}
	binary.BigEndian.PutUint64(b[:], v)
	return append(buffer, b[:]...)
}

// reader - consumes a record, remembering the first short read
type reader struct {
	buffer []byte
	err    error
}

func (r *reader) next(n int) []byte {
	if nil != r.err {
		return make([]byte, n)
	}
	if len(r.buffer) < n {
		r.err = fault.ErrInvalidSnapshotRecord
		return make([]byte, n)
	}
	b := r.buffer[:n]
	r.buffer = r.buffer[n:]
	return b
}

func (r *reader) uint8() uint8   { return r.next(1)[0] }
func (r *reader) uint16() uint16 { return binary.BigEndian.Uint16(r.next(2)) }
func (r *reader) uint32() uint32 { return binary.BigEndian.Uint32(r.next(4)) }
func (r *reader) uint64() uint64 { return binary.BigEndian.Uint64(r.next(8)) }

func (r *reader) transport() *transport.AddressBlock {
	protocol := transport.Protocol(r.uint8())
	port := r.uint16()
	flags := transport.Flags(r.uint32())
	count := int(r.uint8())
	addresses := make([]net.IP, 0, count)
	for i := 0; i < count; i += 1 {
		n := int(r.uint8())
		addresses = append(addresses, net.IP(r.next(n)))
	}
	return transport.New(protocol, port, flags, addresses...)
}

func unpackRecord(key []byte, value []byte) (*Record, error) {
	k := &reader{buffer: key}
	k.uint8() // prefix
	handle, err := poolhandle.New(k.next(int(k.uint8())))
	identifier := k.uint32()
	if nil != k.err || 0 != len(k.buffer) {
		return nil, fault.ErrInvalidSnapshotRecord
	}
	if nil != err {
		return nil, err
	}

	v := &reader{buffer: value}
	r := &Record{}
	r.Handle = handle
	r.Identifier = identifier
	r.ConnectionSocket = handlespace.NoSocket
	r.HomeRegistrar = v.uint32()
	r.RegistrationLife = v.uint64()
	r.LastUpdate = v.uint64()
	r.Settings = policy.Settings{
		Type:            policy.Type(v.uint32()),
		Weight:          v.uint32(),
		Load:            v.uint32(),
		LoadDegradation: v.uint32(),
		LoadDPF:         v.uint32(),
		WeightDPF:       v.uint32(),
		Distance:        v.uint32(),
	}
	r.UserTransport = v.transport()
	if 0 != v.uint8() {
		r.RegistratorTransport = v.transport()
	}
	if nil != v.err || 0 != len(v.buffer) {
		return nil, fault.ErrInvalidSnapshotRecord
	}
	return r, nil
}
