// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/transport"
)

const (
	ownRegistrar   = 0x0000aaaa
	otherRegistrar = 5
	second         = 1000000
)

// fixed sequence of random values, repeating
type sequence struct {
	values []uint64
	next   int
}

func (s *sequence) Uint64() uint64 {
	v := s.values[s.next%len(s.values)]
	s.next += 1
	return v
}

func handle(t *testing.T, name string) poolhandle.Handle {
	h, err := poolhandle.FromString(name)
	if nil != err {
		t.Fatalf("pool handle: %q  error: %s", name, err)
	}
	return h
}

func userTransport(lastOctet byte) *transport.AddressBlock {
	return transport.New(transport.SCTP, 7, 0, net.IPv4(10, 0, 0, lastOctet))
}

func registration(t *testing.T, name string, identifier uint32, owner uint32, settings policy.Settings) *handlespace.Registration {
	return &handlespace.Registration{
		Handle:           handle(t, name),
		HomeRegistrar:    owner,
		Identifier:       identifier,
		RegistrationLife: 5 * second,
		Settings:         settings,
		UserTransport:    userTransport(byte(identifier)),
		ConnectionSocket: handlespace.NoSocket,
	}
}

func roundRobin() policy.Settings {
	return policy.Settings{Type: policy.RoundRobin}
}

func weighted(t policy.Type, weight uint32) policy.Settings {
	return policy.Settings{Type: t, Weight: weight}
}

func newHandlespace(random ...uint64) *handlespace.Handlespace[string] {
	conf := &handlespace.Configuration[string]{}
	if len(random) > 0 {
		conf.Random = &sequence{values: random}
	}
	return handlespace.New[string](ownRegistrar, conf)
}

func mustRegister(t *testing.T, hs *handlespace.Handlespace[string], r *handlespace.Registration, now uint64) *handlespace.Element[string] {
	e, err := hs.RegisterPoolElement(r, now, "")
	if !assert.Nil(t, err, "register %s/%d", r.Handle, r.Identifier) {
		t.FailNow()
	}
	return e
}

func verify(t *testing.T, hs *handlespace.Handlespace[string]) {
	assert.Nil(t, hs.Verify(), "verify")
}

func identifiers(elements []*handlespace.Element[string]) []uint32 {
	ids := make([]uint32, len(elements))
	for i, e := range elements {
		ids[i] = e.Identifier
	}
	return ids
}
