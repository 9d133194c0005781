// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/fault"
)

var (
	ErrExistsOne   = fault.ExistsError("exists one ")
	ErrExistsTwo   = fault.ExistsError("exists two")
	ErrInvalidOne  = fault.InvalidError("invalid one")
	ErrInvalidTwo  = fault.InvalidError("invalid two")
	ErrNotFoundOne = fault.NotFoundError("not found one")
	ErrNotFoundTwo = fault.NotFoundError("not found two")
	ErrProcessOne  = fault.ProcessError("process one")
	ErrProcessTwo  = fault.ProcessError("process two")
	ErrResourceOne = fault.ResourceError("resource one")
	ErrResourceTwo = fault.ResourceError("resource two")
)

// test that various errors can be subclassed
func TestClasses(t *testing.T) {
	errorList := []struct {
		err      error
		exists   bool
		invalid  bool
		notFound bool
		process  bool
		resource bool
	}{
		{ErrExistsOne, true, false, false, false, false},
		{ErrExistsTwo, true, false, false, false, false},
		{ErrInvalidOne, false, true, false, false, false},
		{ErrInvalidTwo, false, true, false, false, false},
		{ErrNotFoundOne, false, false, true, false, false},
		{ErrNotFoundTwo, false, false, true, false, false},
		{ErrProcessOne, false, false, false, true, false},
		{ErrProcessTwo, false, false, false, true, false},
		{ErrResourceOne, false, false, false, false, true},
		{ErrResourceTwo, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrResource(err) != e.resource {
			t.Errorf("%d: expected 'resource' == %v for err = %v", i, e.resource, err)
		}
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, fault.CodeOkay, fault.CodeOf(nil), "nil")
	assert.Equal(t, fault.CodeInvalidPoolHandle, fault.CodeOf(fault.ErrInvalidPoolHandle), "handle")
	assert.Equal(t, fault.CodeInvalidPoolPolicy, fault.CodeOf(fault.ErrInvalidPoolPolicy), "policy")
	assert.Equal(t, fault.CodeOutOfMemory, fault.CodeOf(fault.ErrOutOfMemory), "memory")
	assert.Equal(t, fault.CodeNotFound, fault.CodeOf(fault.ErrNotFound), "not found")
	assert.Equal(t, fault.Code(0xf00d), fault.CodeOf(fault.ErrInvalidRegistrator), "registrator")
	assert.Equal(t, fault.CodeUnspecified, fault.CodeOf(errors.New("other")), "other")
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "okay", fault.CodeOkay.String())
	assert.Equal(t, "not found", fault.CodeNotFound.String())
	assert.Equal(t, "unknown", fault.Code(0x1234).String())
}

func TestPanicf(t *testing.T) {
	assert.PanicsWithValue(t, "node: 7 not linked", func() {
		fault.Panicf("node: %d not linked", 7)
	})
}
