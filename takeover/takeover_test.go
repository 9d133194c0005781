// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package takeover_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/takeover"
)

const (
	own    = 1
	target = 2
)

func TestAcknowledgements(t *testing.T) {
	l := takeover.New(time.Minute, time.Minute, func(uint32, []uint32) {
		t.Error("unexpected expiry")
	})

	err := l.Create(target, []uint32{own, target, 3, 4}, own)
	assert.Nil(t, err, "create")
	assert.Equal(t, 1, l.Count(), "count")

	p, ok := l.Find(target)
	assert.True(t, ok, "find")
	assert.Equal(t, []uint32{3, 4}, p.Outstanding(), "outstanding")

	remaining, ok := l.Acknowledge(target, 4)
	assert.True(t, ok, "ack 4")
	assert.Equal(t, 1, remaining, "remaining after 4")

	_, ok = l.Acknowledge(target, 4)
	assert.False(t, ok, "second ack 4")

	_, ok = l.Acknowledge(target, 9)
	assert.False(t, ok, "unknown peer")

	remaining, ok = l.Acknowledge(target, 3)
	assert.True(t, ok, "ack 3")
	assert.Equal(t, 0, remaining, "remaining after 3")

	assert.True(t, l.Delete(target), "delete")
	assert.False(t, l.Delete(target), "second delete")
	assert.Equal(t, 0, l.Count(), "count after delete")

	_, ok = l.Acknowledge(target, 3)
	assert.False(t, ok, "ack after delete")
}

func TestCreateErrors(t *testing.T) {
	l := takeover.New(time.Minute, time.Minute, nil)

	assert.Equal(t, fault.ErrOwnID, l.Create(own, []uint32{3}, own), "own")

	assert.Nil(t, l.Create(target, nil, own), "create")
	assert.Equal(t, fault.ErrTakeoverExists, l.Create(target, nil, own), "duplicate")
}

func TestExpiry(t *testing.T) {
	type expiry struct {
		target      uint32
		outstanding []uint32
	}
	expired := make(chan expiry, 2)

	l := takeover.New(20*time.Millisecond, time.Hour, func(target uint32, outstanding []uint32) {
		expired <- expiry{target, outstanding}
	})

	assert.Nil(t, l.Create(target, []uint32{5, 3}, own), "create")
	assert.Nil(t, l.Create(7, []uint32{5}, own), "create")
	l.Acknowledge(target, 5)
	assert.True(t, l.Delete(7), "delete")

	time.Sleep(50 * time.Millisecond)
	l.Expire()

	select {
	case e := <-expired:
		assert.Equal(t, uint32(target), e.target, "target")
		assert.Equal(t, []uint32{3}, e.outstanding, "outstanding")
	default:
		t.Fatal("no expiry")
	}
	assert.Equal(t, 0, len(expired), "deleted takeover reported")
	assert.Equal(t, 0, l.Count(), "count")
}

func TestDeleteAfterExpiry(t *testing.T) {
	expiries := 0
	var l *takeover.List
	l = takeover.New(20*time.Millisecond, time.Hour, func(target uint32, outstanding []uint32) {
		expiries += 1
		assert.False(t, l.Delete(target), "delete inside expiry")
	})

	assert.Nil(t, l.Create(target, []uint32{3}, own), "create")
	time.Sleep(50 * time.Millisecond)

	// the last acknowledgement arrives too late to finish the takeover
	_, ok := l.Acknowledge(target, 3)
	assert.False(t, ok, "acknowledge after timeout")
	assert.False(t, l.Delete(target), "delete after timeout")

	l.Expire()
	assert.Equal(t, 1, expiries, "expiries")
	assert.False(t, l.Delete(target), "delete after expiry")
}
