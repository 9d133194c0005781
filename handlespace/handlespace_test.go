// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace_test

import (
	"bytes"
	"net"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/checksum"
	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/handlespace/mocks"
	"github.com/bitmark-inc/rserpoold/policy"
	"github.com/bitmark-inc/rserpoold/transport"
)

func TestRegisterDeregister(t *testing.T) {
	hs := newHandlespace()

	r := registration(t, "EchoPool", 1, ownRegistrar, roundRobin())
	e := mustRegister(t, hs, r, 100)
	verify(t, hs)

	assert.True(t, e.IsNew(), "new")
	assert.Equal(t, 1, hs.Pools(), "pools")
	assert.Equal(t, 1, hs.PoolElements(), "elements")
	assert.Equal(t, 1, hs.OwnedPoolElements(), "owned")
	assert.Equal(t, e, hs.FindPoolElement(r.Handle, 1), "find")
	assert.Equal(t, handlespace.TimerExpiry, e.TimerCode, "timer code")
	assert.Equal(t, uint64(100+5*second), e.TimerTimeStamp, "expiry")

	err := hs.DeregisterPoolElement(r.Handle, 1)
	assert.Nil(t, err, "deregister")
	verify(t, hs)

	assert.Nil(t, hs.FindPoolElement(r.Handle, 1), "find after deregister")
	assert.Nil(t, hs.FindPool(r.Handle), "pool still present")
	assert.Equal(t, 0, hs.PoolElements(), "elements")
	assert.Equal(t, 0, hs.Timers(), "timers")

	err = hs.DeregisterPoolElement(r.Handle, 1)
	assert.Equal(t, fault.ErrNotFound, err, "second deregister")
}

func TestTransportsAreCopied(t *testing.T) {
	hs := newHandlespace()

	r := registration(t, "EchoPool", 1, ownRegistrar, roundRobin())
	e := mustRegister(t, hs, r, 0)

	r.UserTransport.Addresses[0] = net.IPv4(192, 168, 1, 1)
	r.UserTransport.Port = 99

	assert.False(t, r.UserTransport == e.UserTransport, "aliased block")
	assert.Equal(t, uint16(7), e.UserTransport.Port, "port changed")
	assert.True(t, e.UserTransport.Addresses[0].Equal(net.IPv4(10, 0, 0, 1)), "address changed")
}

func TestRegistrationErrors(t *testing.T) {
	hs := newHandlespace()
	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0)

	tcp := registration(t, "EchoPool", 2, ownRegistrar, roundRobin())
	tcp.UserTransport.Protocol = transport.TCP

	cc := registration(t, "EchoPool", 3, ownRegistrar, roundRobin())
	cc.UserTransport.Flags = transport.ControlChannel

	noAddresses := registration(t, "EchoPool", 4, ownRegistrar, roundRobin())
	noAddresses.UserTransport.Addresses = nil

	badRegistrator := registration(t, "EchoPool", 5, ownRegistrar, roundRobin())
	badRegistrator.RegistratorTransport = transport.New(transport.TCP, 9, 0, net.IPv4(10, 1, 1, 1))

	tests := []struct {
		r   *handlespace.Registration
		err error
	}{
		{&handlespace.Registration{Settings: roundRobin(), Identifier: 9, UserTransport: userTransport(9)}, fault.ErrInvalidPoolHandle},
		{registration(t, "EchoPool", 6, ownRegistrar, policy.Settings{Type: 0x12345678}), fault.ErrInvalidPoolPolicy},
		{registration(t, "EchoPool", 0, ownRegistrar, roundRobin()), fault.ErrInvalidID},
		{tcp, fault.ErrWrongProtocol},
		{badRegistrator, fault.ErrInvalidRegistrator},
		{noAddresses, fault.ErrInvalidAddresses},
		{cc, fault.ErrWrongControlChannelHandling},
		{registration(t, "EchoPool", 7, ownRegistrar, weighted(policy.WeightedRandom, 3)), fault.ErrIncompatiblePoolPolicy},
		{registration(t, "OtherPool", 0, ownRegistrar, roundRobin()), fault.ErrInvalidID},
	}

	for i, item := range tests {
		e, err := hs.RegisterPoolElement(item.r, 0, "")
		assert.Nil(t, e, "%d: element", i)
		assert.Equal(t, item.err, err, "%d: error", i)
		verify(t, hs)
	}

	assert.Equal(t, 1, hs.Pools(), "failed first registration left a pool")
	assert.Equal(t, 1, hs.PoolElements(), "elements")
}

func TestNoResources(t *testing.T) {
	hs := handlespace.New[string](ownRegistrar, &handlespace.Configuration[string]{MaxPoolElements: 2})

	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0)
	mustRegister(t, hs, registration(t, "EchoPool", 2, ownRegistrar, roundRobin()), 0)

	_, err := hs.RegisterPoolElement(registration(t, "EchoPool", 3, ownRegistrar, roundRobin()), 0, "")
	assert.Equal(t, fault.ErrNoResources, err, "same pool")

	_, err = hs.RegisterPoolElement(registration(t, "NewPool", 1, ownRegistrar, roundRobin()), 0, "")
	assert.Equal(t, fault.ErrNoResources, err, "new pool")
	assert.Nil(t, hs.FindPool(handle(t, "NewPool")), "new pool not unwound")

	// refreshing an existing element needs no resources
	_, err = hs.RegisterPoolElement(registration(t, "EchoPool", 2, ownRegistrar, roundRobin()), 10, "")
	assert.Nil(t, err, "reregistration")

	assert.Equal(t, 2, hs.PoolElements(), "elements")
	verify(t, hs)
}

func TestReregistration(t *testing.T) {
	hs := newHandlespace()

	r := registration(t, "EchoPool", 1, ownRegistrar, weighted(policy.WeightedRoundRobin, 2))
	e := mustRegister(t, hs, r, 0)
	sum := hs.HandlespaceChecksum()

	r2 := registration(t, "EchoPool", 1, otherRegistrar, weighted(policy.WeightedRoundRobin, 5))
	r2.UserTransport = userTransport(77)
	r2.RegistrationLife = 2 * second
	again := mustRegister(t, hs, r2, 3*second)
	verify(t, hs)

	assert.True(t, e == again, "element replaced")
	assert.False(t, again.IsNew(), "new")
	assert.True(t, again.IsUpdated(), "updated")
	assert.Equal(t, uint32(5), again.Settings.Weight, "weight")
	assert.Equal(t, uint32(otherRegistrar), again.HomeRegistrar, "owner")
	assert.True(t, again.UserTransport.Equal(userTransport(77)), "transport")
	assert.Equal(t, uint64(5*second), again.TimerTimeStamp, "timer rescheduled")
	assert.Equal(t, sum, hs.HandlespaceChecksum(), "checksum")
	assert.Equal(t, 0, hs.OwnedPoolElements(), "owned")
	assert.Equal(t, 1, hs.OwnershipNodesForIdentifier(otherRegistrar), "other's")

	mustRegister(t, hs, r2, 4*second)
	assert.False(t, again.IsUpdated(), "updated with same settings")
	verify(t, hs)
}

// weight 1 and weight 3 under weighted round robin
func TestWeightedRoundRobinResolution(t *testing.T) {
	hs := newHandlespace()
	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, weighted(policy.WeightedRoundRobin, 1)), 0)
	mustRegister(t, hs, registration(t, "EchoPool", 2, ownRegistrar, weighted(policy.WeightedRoundRobin, 3)), 0)

	got := []uint32{}
	for i := 0; i < 8; i += 1 {
		selected, err := hs.HandleResolution(handle(t, "EchoPool"), 1, 1)
		assert.Nil(t, err, "resolution %d", i)
		assert.Len(t, selected, 1, "resolution %d", i)
		got = append(got, identifiers(selected)...)
		verify(t, hs)
	}
	assert.Equal(t, []uint32{1, 2, 2, 2, 1, 2, 2, 2}, got, "pattern")
}

func TestRoundRobinResolution(t *testing.T) {
	hs := newHandlespace()
	for id := uint32(1); id <= 3; id += 1 {
		mustRegister(t, hs, registration(t, "EchoPool", id, ownRegistrar, roundRobin()), 0)
	}

	tests := []struct {
		maxItems     int
		maxIncrement int
		expected     []uint32
	}{
		{1, 0, []uint32{1}},
		{1, 0, []uint32{2}},
		{3, 0, []uint32{3, 1, 2}},
		{3, 2, []uint32{1, 2, 3}},
		{5, 1, []uint32{3, 1, 2}},
		{2, 5, []uint32{1, 2}},
		{1, 0, []uint32{3}},
	}
	for i, item := range tests {
		selected, err := hs.HandleResolution(handle(t, "EchoPool"), item.maxItems, item.maxIncrement)
		assert.Nil(t, err, "%d: error", i)
		assert.Equal(t, item.expected, identifiers(selected), "%d: selection", i)
		verify(t, hs)
	}

	selected, err := hs.HandleResolution(handle(t, "EchoPool"), 0, 0)
	assert.Nil(t, err, "zero items")
	assert.Empty(t, selected, "zero items")

	_, err = hs.HandleResolution(handle(t, "NoSuchPool"), 1, 0)
	assert.Equal(t, fault.ErrNotFound, err, "unknown pool")
}

func TestWeightedRandomResolution(t *testing.T) {
	// weights 1, 3, 6: cumulative ranges [0,1) [1,4) [4,10)
	hs := newHandlespace(0, 1, 3, 9, 4)
	for id, w := range []uint32{1, 3, 6} {
		mustRegister(t, hs, registration(t, "EchoPool", uint32(id+1), ownRegistrar, weighted(policy.WeightedRandom, w)), 0)
	}
	h := handle(t, "EchoPool")

	selected, err := hs.HandleResolution(h, 1, 0)
	assert.Nil(t, err, "error")
	assert.Equal(t, []uint32{1}, identifiers(selected), "0 → 1")

	selected, _ = hs.HandleResolution(h, 1, 0)
	assert.Equal(t, []uint32{2}, identifiers(selected), "1 → 2")

	selected, _ = hs.HandleResolution(h, 1, 0)
	assert.Equal(t, []uint32{2}, identifiers(selected), "3 → 2")

	// draws without replacement: 9 → 3, then 4 % (1+3) = 0 → 1
	selected, _ = hs.HandleResolution(h, 2, 0)
	assert.Equal(t, []uint32{3, 1}, identifiers(selected), "two items")
	verify(t, hs)
}

func TestWeightedRandomNeverPicksZeroWeight(t *testing.T) {
	hs := newHandlespace(0, 1, 2, 3, 4, 5)
	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, weighted(policy.WeightedRandom, 0)), 0)
	mustRegister(t, hs, registration(t, "EchoPool", 2, ownRegistrar, weighted(policy.WeightedRandom, 7)), 0)

	for i := 0; i < 6; i += 1 {
		selected, err := hs.HandleResolution(handle(t, "EchoPool"), 2, 0)
		assert.Nil(t, err, "error")
		assert.Equal(t, []uint32{2}, identifiers(selected), "%d: selection", i)
	}
	verify(t, hs)
}

func TestRandomizedDegradationKeptBySelection(t *testing.T) {
	hs := newHandlespace(0, 1, 2)
	settings := policy.Settings{
		Type:            policy.RandomizedLeastUsedDegradation,
		LoadDegradation: policy.MaxLoadDegradation / 2,
	}
	e1 := mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, settings), 0)
	e2 := mustRegister(t, hs, registration(t, "EchoPool", 2, ownRegistrar, settings), 0)

	p := policy.ByType(policy.RandomizedLeastUsedDegradation)
	for i := 0; i < 3; i += 1 {
		selected, err := hs.HandleResolution(handle(t, "EchoPool"), 1, 0)
		assert.Nil(t, err, "%d: error", i)
		assert.Equal(t, 1, len(selected), "%d: count", i)
	}
	for _, e := range []*handlespace.Element[string]{e1, e2} {
		assert.Equal(t, uint32(0), e.Degradation, "%d: degradation", e.Identifier)
		assert.Equal(t, uint64(policy.MaxLoad), p.Value(&e.State), "%d: value", e.Identifier)
	}
	verify(t, hs)
}

func TestExpiry(t *testing.T) {
	hs := newHandlespace()
	const registered = 50 * second

	r := registration(t, "EchoPool", 1, ownRegistrar, roundRobin())
	r.RegistrationLife = 1000000
	mustRegister(t, hs, r, registered)

	next, ok := hs.NextTimerTimeStamp()
	assert.True(t, ok, "timer active")
	assert.Equal(t, uint64(registered+1000000), next, "next timer")

	assert.Equal(t, 0, hs.PurgeExpiredPoolElements(registered+999999), "purged early")
	assert.NotNil(t, hs.FindPoolElement(r.Handle, 1), "element lost")

	assert.Equal(t, 1, hs.PurgeExpiredPoolElements(registered+1000001), "not purged")
	assert.Equal(t, fault.ErrNotFound, hs.DeregisterPoolElement(r.Handle, 1), "deregister")

	_, ok = hs.NextTimerTimeStamp()
	assert.False(t, ok, "timer left")
	verify(t, hs)
}

func TestPurgeStopsAtFirstUnexpired(t *testing.T) {
	hs := newHandlespace()
	for id := uint32(1); id <= 4; id += 1 {
		r := registration(t, "EchoPool", id, ownRegistrar, roundRobin())
		r.RegistrationLife = uint64(id) * second
		mustRegister(t, hs, r, 0)
	}

	// keep alive timers are not expiry and are left alone
	e := hs.FindPoolElement(handle(t, "EchoPool"), 2)
	hs.DeactivateTimer(e)
	hs.ActivateTimer(e, handlespace.TimerKeepAliveTimeout, second)
	verify(t, hs)

	assert.Equal(t, 1, hs.PurgeExpiredPoolElements(2*second), "purged")
	assert.NotNil(t, hs.FindPoolElement(handle(t, "EchoPool"), 2), "keep alive purged")
	assert.Equal(t, 3, hs.PoolElements(), "elements")
	assert.Equal(t, 1, hs.PurgeExpiredPoolElements(3*second), "purged")
	verify(t, hs)
}

func TestMarkAndPurge(t *testing.T) {
	hs := newHandlespace()
	for id := uint32(1); id <= 4; id += 1 {
		mustRegister(t, hs, registration(t, "EchoPool", id, otherRegistrar, roundRobin()), 0)
	}
	mustRegister(t, hs, registration(t, "EchoPool", 9, ownRegistrar, roundRobin()), 0)

	assert.Equal(t, 4, hs.MarkPoolElementNodes(otherRegistrar), "marked")
	mustRegister(t, hs, registration(t, "EchoPool", 3, otherRegistrar, roundRobin()), second)

	assert.Equal(t, 3, hs.PurgeMarkedPoolElementNodes(otherRegistrar), "purged")
	assert.NotNil(t, hs.FindPoolElement(handle(t, "EchoPool"), 3), "reregistered element purged")
	assert.NotNil(t, hs.FindPoolElement(handle(t, "EchoPool"), 9), "own element purged")
	assert.Equal(t, 2, hs.PoolElements(), "elements")
	verify(t, hs)

	hs.MarkPoolElementNodes(otherRegistrar)
	assert.Equal(t, 1, hs.PurgeMarkedPoolElementNodes(otherRegistrar), "purged")
	assert.Equal(t, 0, hs.OwnershipNodesForIdentifier(otherRegistrar), "left")
	verify(t, hs)
}

func TestChecksumOrderIndependent(t *testing.T) {
	hs := newHandlespace()
	mustRegister(t, hs, registration(t, "Other", 77, ownRegistrar, roundRobin()), 0)
	initial := hs.HandlespaceChecksum()
	initialOwn := hs.OwnershipChecksum(ownRegistrar)

	orders := [][]uint32{{1, 2, 3}, {3, 1, 2}, {2, 3, 1}}
	sums := []uint16{}
	for _, in := range orders {
		for _, id := range in {
			mustRegister(t, hs, registration(t, "EchoPool", id, ownRegistrar, roundRobin()), 0)
			verify(t, hs)
		}
		sums = append(sums, hs.HandlespaceChecksum())
		assert.Equal(t, hs.ComputeHandlespaceChecksum(), hs.HandlespaceChecksum(), "running sum")
		assert.Equal(t, hs.ComputeOwnershipChecksum(ownRegistrar), hs.OwnershipChecksum(ownRegistrar), "owner sum")

		for i := len(in) - 1; i >= 0; i -= 1 {
			assert.Nil(t, hs.DeregisterPoolElement(handle(t, "EchoPool"), in[(i+1)%len(in)]), "deregister")
		}
		assert.Equal(t, initial, hs.HandlespaceChecksum(), "after removal")
		assert.Equal(t, initialOwn, hs.OwnershipChecksum(ownRegistrar), "owner after removal")
	}
	assert.Equal(t, sums[0], sums[1], "order 2")
	assert.Equal(t, sums[0], sums[2], "order 3")

	assert.Equal(t, checksum.Initial.Finish(), hs.OwnershipChecksum(12345), "unknown owner")
}

func TestOwnershipUpdate(t *testing.T) {
	hs := newHandlespace()
	e := mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0)
	mustRegister(t, hs, registration(t, "EchoPool", 2, ownRegistrar, roundRobin()), 0)

	ownBefore := hs.OwnershipChecksum(ownRegistrar)
	hs.UpdateOwnershipOfPoolElementNode(e, otherRegistrar)
	verify(t, hs)

	assert.Equal(t, 1, hs.OwnedPoolElements(), "owned")
	assert.Equal(t, e, hs.FirstOwnershipForIdentifier(otherRegistrar), "first of other")
	assert.NotEqual(t, ownBefore, hs.OwnershipChecksum(ownRegistrar), "own checksum")

	hs.UpdateOwnershipOfPoolElementNode(e, handlespace.UndefinedRegistrar)
	assert.Nil(t, hs.FirstOwnershipForIdentifier(otherRegistrar), "still owned")
	verify(t, hs)
}

func TestConnections(t *testing.T) {
	hs := newHandlespace()
	for id := uint32(1); id <= 5; id += 1 {
		r := registration(t, "EchoPool", id, ownRegistrar, roundRobin())
		r.ConnectionSocket = 10 + int(id%2)
		r.ConnectionAssoc = 1
		mustRegister(t, hs, r, 0)
	}
	verify(t, hs)

	assert.Equal(t, 2, hs.PoolElementsOfConnection(10, 1), "socket 10")
	assert.Equal(t, 3, hs.PoolElementsOfConnection(11, 1), "socket 11")
	assert.Equal(t, 0, hs.PoolElementsOfConnection(11, 2), "other association")

	e := hs.FindPoolElement(handle(t, "EchoPool"), 1)
	hs.UpdateConnectionOfPoolElementNode(e, 10, 1)
	assert.Equal(t, 3, hs.PoolElementsOfConnection(10, 1), "moved")
	verify(t, hs)

	assert.Equal(t, 2, hs.PurgeConnection(11, 1), "purged")
	assert.Equal(t, 3, hs.PoolElements(), "left")
	verify(t, hs)
}

func TestUnreachability(t *testing.T) {
	hs := newHandlespace()
	h := handle(t, "EchoPool")
	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0)

	removed, err := hs.ReportUnreachability(h, 1, 2)
	assert.Nil(t, err, "first report")
	assert.False(t, removed, "removed on first report")

	removed, err = hs.ReportUnreachability(h, 1, 2)
	assert.Nil(t, err, "second report")
	assert.True(t, removed, "kept on second report")

	_, err = hs.ReportUnreachability(h, 1, 2)
	assert.Equal(t, fault.ErrNotFound, err, "gone")
}

func TestDisposer(t *testing.T) {
	disposed := []string{}
	hs := handlespace.New[string](ownRegistrar, &handlespace.Configuration[string]{
		Disposer: func(data string) { disposed = append(disposed, data) },
	})

	_, err := hs.RegisterPoolElement(registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0, "one")
	assert.Nil(t, err, "register")
	_, err = hs.RegisterPoolElement(registration(t, "EchoPool", 2, ownRegistrar, roundRobin()), 0, "two")
	assert.Nil(t, err, "register")
	_, err = hs.RegisterPoolElement(registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0, "ignored")
	assert.Nil(t, err, "reregister")

	assert.Nil(t, hs.DeregisterPoolElement(handle(t, "EchoPool"), 2), "deregister")
	hs.Clear()

	assert.Equal(t, []string{"two", "one"}, disposed, "disposed")
	assert.Equal(t, 0, hs.Pools(), "pools")
}

func TestNotifications(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	observer := mocks.NewMockObserver(ctl)
	hs := handlespace.New[string](ownRegistrar, &handlespace.Configuration[string]{Observer: observer})
	h := handle(t, "EchoPool")

	var created handlespace.Notification
	gomock.InOrder(
		observer.EXPECT().Notify(gomock.Any()).Do(func(n handlespace.Notification) { created = n }).Times(1),
		observer.EXPECT().Notify(gomock.Any()).Do(func(n handlespace.Notification) {
			assert.Equal(t, handlespace.ActionUpdate, n.Action, "update action")
			assert.Equal(t, uint32(otherRegistrar), n.HomeRegistrar, "new owner")
			assert.Equal(t, uint32(ownRegistrar), n.PreviousOwner, "previous owner")
		}).Times(1),
		observer.EXPECT().Notify(gomock.Any()).Do(func(n handlespace.Notification) {
			assert.Equal(t, handlespace.ActionDelete, n.Action, "delete action")
		}).Times(1),
	)

	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0)
	mustRegister(t, hs, registration(t, "EchoPool", 1, otherRegistrar, roundRobin()), 1)
	assert.Nil(t, hs.DeregisterPoolElement(h, 1), "deregister")

	assert.Equal(t, handlespace.ActionCreate, created.Action, "create action")
	assert.Equal(t, h, created.Handle, "handle")
	assert.Equal(t, uint32(1), created.Identifier, "identifier")
}

func TestPrint(t *testing.T) {
	hs := newHandlespace()
	mustRegister(t, hs, registration(t, "EchoPool", 1, ownRegistrar, roundRobin()), 0)

	buffer := &bytes.Buffer{}
	hs.Print(buffer, handlespace.PrintAll)

	assert.Contains(t, buffer.String(), "pool EchoPool policy=RoundRobin", "pool line")
	assert.Contains(t, buffer.String(), "timers: 1", "timers")
	assert.Contains(t, hs.String(), "1 pools 1 elements", "summary")
}
