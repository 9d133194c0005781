// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/counter"
)

// test incrementing/decrementing a counter
func TestCounter(t *testing.T) {

	var c1 counter.Counter

	assert.True(t, c1.IsZero(), "not zero at start")

	for i := 0; i < 5; i += 1 {
		c1.Increment()
	}
	assert.Equal(t, uint64(5), c1.Uint64(), "after incrementing")

	assert.Equal(t, uint64(12), c1.Add(7), "after add")

	assert.Equal(t, uint64(11), c1.Decrement(), "after decrement")

	assert.Equal(t, uint64(11), c1.Reset(), "reset")
	assert.True(t, c1.IsZero(), "not zero after reset")

	c1.Decrement()

	// check against underflow, i.e. twos complement -1
	assert.Equal(t, ^uint64(0), c1.Uint64(), "underflow")
}

func TestConcurrentIncrement(t *testing.T) {
	var c counter.Counter
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j += 1 {
				c.Increment()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(8000), c.Uint64(), "total")
}
