// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/poolhandle"
	"github.com/bitmark-inc/rserpoold/registrar"
	"github.com/bitmark-inc/rserpoold/transport"
)

// key of a static element
type staticKey struct {
	handle     string
	identifier uint32
}

// staticPools - elements from the configuration file
//
// as a background process each element is re-registered every half of
// the shortest configured lifetime, so it never expires while it
// remains in the configuration
type staticPools struct {
	sync.Mutex
	log       *logger.L
	registrar *registrar.Registrar
	current   map[staticKey]*handlespace.Registration
	reset     chan struct{}
}

func newStaticPools(log *logger.L, r *registrar.Registrar) *staticPools {
	return &staticPools{
		log:       log,
		registrar: r,
		current:   make(map[staticKey]*handlespace.Registration),
		reset:     make(chan struct{}, 1),
	}
}

// Run - refresh until shutdown, restarting the timer after each Set
func (s *staticPools) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Info("starting…")

	timer := time.NewTimer(s.Interval())
loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-s.reset:
			if !timer.Stop() {
				<-timer.C
			}
			interval := s.Interval()
			s.log.Debugf("refresh interval: %s", interval)
			timer.Reset(interval)

		case <-timer.C:
			s.Refresh()
			timer.Reset(s.Interval())
		}
	}
	timer.Stop()
	s.log.Info("stopped")
}

// Set - replace the static elements
//
// all entries are checked before any change is made, elements no
// longer present are deregistered
func (s *staticPools) Set(pools []StaticPoolType) error {
	next := make(map[staticKey]*handlespace.Registration, len(pools))
	for i := range pools {
		r, err := pools[i].registration()
		if nil != err {
			return fmt.Errorf("static_pools[%d]: %s", i+1, err)
		}
		k := staticKey{handle: pools[i].Handle, identifier: r.Identifier}
		if _, ok := next[k]; ok {
			return fmt.Errorf("static_pools[%d]: duplicate %s/$%08x", i+1, k.handle, k.identifier)
		}
		next[k] = r
	}

	s.Lock()
	defer s.Unlock()

	for k, r := range s.current {
		if _, ok := next[k]; ok {
			continue
		}
		if err := s.registrar.Deregister(r.Handle, r.Identifier); nil != err {
			s.log.Warnf("static: %s/$%08x deregister error: %s", k.handle, k.identifier, err)
		} else {
			s.log.Infof("static: %s/$%08x removed", k.handle, k.identifier)
		}
	}
	s.current = next
	s.refresh()

	// the lifetimes may have changed
	select {
	case s.reset <- struct{}{}:
	default:
	}
	return nil
}

// Refresh - re-register every static element
func (s *staticPools) Refresh() {
	s.Lock()
	defer s.Unlock()
	s.refresh()
}

func (s *staticPools) refresh() {
	for k, r := range s.current {
		if _, err := s.registrar.Register(r, registrar.OriginStatic); nil != err {
			s.log.Errorf("static: %s/$%08x register error: %s", k.handle, k.identifier, err)
		}
	}
}

// Count - number of static elements
func (s *staticPools) Count() int {
	s.Lock()
	defer s.Unlock()
	return len(s.current)
}

// Interval - half the shortest lifetime of the current elements
func (s *staticPools) Interval() time.Duration {
	s.Lock()
	defer s.Unlock()

	shortest := time.Duration(defaultStaticLifetime) * time.Second
	for _, r := range s.current {
		if d := time.Duration(r.RegistrationLife) * time.Microsecond; d > 0 && d < shortest {
			shortest = d
		}
	}
	return shortest / 2
}

// convert a configuration entry
func (p *StaticPoolType) registration() (*handlespace.Registration, error) {
	handle, err := poolhandle.FromString(p.Handle)
	if nil != err {
		return nil, err
	}

	pp := policy.ByName(p.Policy)
	if nil == pp {
		return nil, fmt.Errorf("unknown policy: %q", p.Policy)
	}

	protocol, ok := transport.ProtocolFromName(p.Protocol)
	if !ok {
		return nil, fmt.Errorf("unknown protocol: %q", p.Protocol)
	}

	if 0 == p.Identifier {
		return nil, fmt.Errorf("%s: identifier must not be zero", p.Handle)
	}
	if p.Lifetime <= 0 {
		return nil, fmt.Errorf("%s: lifetime: %d must be positive", p.Handle, p.Lifetime)
	}

	addresses := make([]net.IP, 0, len(p.Addresses))
	for _, a := range p.Addresses {
		ip := net.ParseIP(a)
		if nil == ip {
			return nil, fmt.Errorf("%s: invalid address: %q", p.Handle, a)
		}
		addresses = append(addresses, ip)
	}

	flags := transport.Flags(0)
	if p.ControlChannel {
		flags |= transport.ControlChannel
	}

	userTransport := transport.New(protocol, p.Port, flags, addresses...)
	if !userTransport.IsValidUser() {
		return nil, fmt.Errorf("%s: invalid transport: %s", p.Handle, userTransport)
	}

	return &handlespace.Registration{
		Handle:           handle,
		Identifier:       p.Identifier,
		RegistrationLife: uint64(time.Duration(p.Lifetime) * time.Second / time.Microsecond),
		Settings: policy.Settings{
			Type:            pp.Type,
			Weight:          p.Weight,
			Load:            policy.LoadFromPercent(p.Load),
			LoadDegradation: policy.LoadFromPercent(p.LoadDegradation),
		},
		UserTransport:    userTransport,
		ConnectionSocket: handlespace.NoSocket,
	}, nil
}
