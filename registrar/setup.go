// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registrar

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/eapache/queue"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/rserpoold/background"
	"github.com/bitmark-inc/rserpoold/counter"
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/idbitmap"
	"github.com/bitmark-inc/rserpoold/storage"
	"github.com/bitmark-inc/rserpoold/takeover"
)

// Origin - how an element came to be registered
type Origin string

// element origins
const (
	OriginDynamic  Origin = "dynamic"  // registration request
	OriginStatic   Origin = "static"   // configuration file
	OriginSnapshot Origin = "snapshot" // restored at start up
	OriginPeer     Origin = "peer"     // handle table of another registrar
)

// Handlespace - the handlespace type a registrar manages
type Handlespace = handlespace.Handlespace[Origin]

// defaults for zero configuration values
const (
	defaultMaintenanceInterval = time.Second
	defaultTakeoverTimeout     = 5 * time.Second
	defaultMaxBadReports       = 3
	defaultMaxItems            = 16
	defaultResolutionRate      = 1000
	defaultResolutionBurst     = 100
	defaultMaxConnections      = 4096
)

// Configuration - registrar parameters
type Configuration struct {
	Identifier          uint32
	MaintenanceInterval time.Duration
	MaxBadReports       int
	MaxPoolElements     int
	MaxItems            int // most elements returned by one resolution
	MaxIncrement        int // 0: use the policy default
	ResolutionRate      float64
	ResolutionBurst     int
	TakeoverTimeout     time.Duration
	MaxConnections      int
	Snapshot            *storage.Store // nil: no snapshots

	// receives each change after it has been made, from the maintenance
	// process
	Notify func(n handlespace.Notification)

	// time source, for testing
	Clock func() time.Time
}

// Statistics - request counts since start
type Statistics struct {
	Registrations   uint64
	Reregistrations uint64
	Deregistrations uint64
	Resolutions     uint64
	Failures        uint64
	Expired         uint64
	Takeovers       uint64
	Connections     uint64
}

// Registrar - owns one handlespace
type Registrar struct {
	sync.Mutex

	log           *logger.L
	identifier    uint32
	hs            *Handlespace
	connections   *idbitmap.Bitmap
	takeovers     *takeover.List
	limiter       *rate.Limiter
	notifications *queue.Queue
	snapshot      *storage.Store
	notify        func(n handlespace.Notification)
	clock         func() time.Time
	background    *background.T

	maintenanceInterval time.Duration
	maxBadReports       int
	maxItems            int
	maxIncrement        int

	statistics struct {
		registrations   counter.Counter
		reregistrations counter.Counter
		deregistrations counter.Counter
		resolutions     counter.Counter
		failures        counter.Counter
		expired         counter.Counter
		takeovers       counter.Counter
		connections     counter.Counter
	}
}

// New - create a registrar with an empty handlespace
func New(configuration *Configuration) (*Registrar, error) {
	if 0 == configuration.Identifier {
		return nil, fault.ErrInvalidID
	}

	r := &Registrar{
		log:                 logger.New("registrar"),
		identifier:          configuration.Identifier,
		notifications:       queue.New(),
		snapshot:            configuration.Snapshot,
		notify:              configuration.Notify,
		clock:               configuration.Clock,
		maintenanceInterval: configuration.MaintenanceInterval,
		maxBadReports:       configuration.MaxBadReports,
		maxItems:            configuration.MaxItems,
		maxIncrement:        configuration.MaxIncrement,
	}
	if nil == r.clock {
		r.clock = time.Now
	}
	if r.maintenanceInterval <= 0 {
		r.maintenanceInterval = defaultMaintenanceInterval
	}
	if r.maxBadReports <= 0 {
		r.maxBadReports = defaultMaxBadReports
	}
	if r.maxItems <= 0 {
		r.maxItems = defaultMaxItems
	}

	resolutionRate := configuration.ResolutionRate
	if resolutionRate <= 0 {
		resolutionRate = defaultResolutionRate
	}
	resolutionBurst := configuration.ResolutionBurst
	if resolutionBurst <= 0 {
		resolutionBurst = defaultResolutionBurst
	}
	if resolutionBurst < r.maxItems {
		resolutionBurst = r.maxItems
	}
	r.limiter = rate.NewLimiter(rate.Limit(resolutionRate), resolutionBurst)

	maxConnections := configuration.MaxConnections
	if maxConnections <= 0 {
		maxConnections = defaultMaxConnections
	}
	r.connections = idbitmap.New(maxConnections)
	r.connections.AllocateSpecific(0) // descriptors start at one

	takeoverTimeout := configuration.TakeoverTimeout
	if takeoverTimeout <= 0 {
		takeoverTimeout = defaultTakeoverTimeout
	}
	r.takeovers = takeover.New(takeoverTimeout, r.maintenanceInterval, r.takeoverExpired)

	r.hs = handlespace.New[Origin](r.identifier, &handlespace.Configuration[Origin]{
		Observer:        (*observer)(r),
		Disposer:        r.dispose,
		MaxPoolElements: configuration.MaxPoolElements,
	})

	r.log.Infof("registrar: $%08x  max items: %d  resolution rate: %g/s burst: %d",
		r.identifier, r.maxItems, resolutionRate, resolutionBurst)
	return r, nil
}

// Start - run the maintenance process
func (r *Registrar) Start() {
	r.Lock()
	defer r.Unlock()

	if nil != r.background {
		return
	}
	r.background = background.Start(background.Processes{
		background.Every(r.maintenanceInterval, r.Maintain),
	}, nil)
	r.log.Info("started")
}

// Stop - stop maintenance and save a final snapshot
func (r *Registrar) Stop() {
	r.Lock()
	bg := r.background
	r.background = nil
	r.Unlock()

	if nil != bg {
		bg.Stop()
	}
	r.Maintain()
	r.log.Info("stopped")
}

// Identifier - this registrar's identifier
func (r *Registrar) Identifier() uint32 {
	return r.identifier
}

// Access - run f with exclusive access to the handlespace
//
// the handlespace must not be retained after f returns
func (r *Registrar) Access(f func(hs *Handlespace) error) error {
	r.Lock()
	defer r.Unlock()
	return f(r.hs)
}

// Statistics - current counts
func (r *Registrar) Statistics() Statistics {
	return Statistics{
		Registrations:   r.statistics.registrations.Uint64(),
		Reregistrations: r.statistics.reregistrations.Uint64(),
		Deregistrations: r.statistics.deregistrations.Uint64(),
		Resolutions:     r.statistics.resolutions.Uint64(),
		Failures:        r.statistics.failures.Uint64(),
		Expired:         r.statistics.expired.Uint64(),
		Takeovers:       r.statistics.takeovers.Uint64(),
		Connections:     r.statistics.connections.Uint64(),
	}
}

// current time in handlespace units
func (r *Registrar) now() uint64 {
	return uint64(r.clock().UnixNano() / int64(time.Microsecond))
}

func (r *Registrar) dispose(origin Origin) {
	r.log.Tracef("dispose: %s element", origin)
}
