// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package poolhandle_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/fault"
	"github.com/bitmark-inc/rserpoold/poolhandle"
)

func TestLength(t *testing.T) {
	_, err := poolhandle.FromString("")
	assert.Equal(t, fault.ErrInvalidPoolHandle, err, "empty")

	_, err = poolhandle.FromString(strings.Repeat("x", poolhandle.MaxSize+1))
	assert.Equal(t, fault.ErrInvalidPoolHandle, err, "too long")

	h, err := poolhandle.FromString(strings.Repeat("x", poolhandle.MaxSize))
	assert.Nil(t, err, "maximum")
	assert.Equal(t, poolhandle.MaxSize, h.Len())

	assert.False(t, poolhandle.Handle{}.IsValid(), "zero value")
}

func TestCopiesInput(t *testing.T) {
	b := []byte("EchoPool")
	h, err := poolhandle.New(b)
	assert.Nil(t, err)
	b[0] = 'X'
	assert.Equal(t, "EchoPool", h.String(), "caller buffer not aliased")
}

func TestCompare(t *testing.T) {
	a, _ := poolhandle.FromString("Pool")
	b, _ := poolhandle.FromString("PoolA")
	c, _ := poolhandle.FromString("Q")

	assert.Equal(t, -1, a.Compare(b), "prefix first")
	assert.Equal(t, -1, b.Compare(c), "byte order before length")
	assert.Equal(t, 0, a.Compare(a), "equal")
	assert.Equal(t, 1, c.Compare(a), "greater")
}

func TestString(t *testing.T) {
	h, _ := poolhandle.New([]byte{'P', 0x00, 'x', '{', 0xff})
	assert.Equal(t, "P{00}x{7b}{ff}", h.String())
}
