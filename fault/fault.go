// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type ResourceError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised          = ExistsError("already initialised")
	ErrConfigurationNotTable       = InvalidError("configuration did not return a table")
	ErrDuplicateID                 = ExistsError("duplicate pool element identifier")
	ErrIncompatiblePoolPolicy      = InvalidError("incompatible pool policy")
	ErrInvalidAddresses            = InvalidError("invalid transport addresses")
	ErrInvalidCount                = InvalidError("invalid count")
	ErrInvalidID                   = InvalidError("invalid pool element identifier")
	ErrInvalidLoggerChannel        = InvalidError("invalid logger channel")
	ErrInvalidPoolHandle           = InvalidError("invalid pool handle")
	ErrInvalidPoolPolicy           = InvalidError("invalid pool policy")
	ErrInvalidRegistrator          = InvalidError("invalid registrator transport")
	ErrInvalidSnapshotRecord       = InvalidError("invalid snapshot record")
	ErrInvalidSnapshotVersion      = InvalidError("invalid snapshot version")
	ErrNoResources                 = ResourceError("no resources")
	ErrNotFound                    = NotFoundError("not found")
	ErrNotInitialised              = NotFoundError("not initialised")
	ErrOutOfMemory                 = ResourceError("out of memory")
	ErrOwnID                       = InvalidError("own registrar identifier")
	ErrRateLimited                 = ProcessError("rate limited")
	ErrTakeoverExists              = ExistsError("takeover already in progress")
	ErrWrongControlChannelHandling = InvalidError("wrong control channel handling")
	ErrWrongProtocol               = InvalidError("wrong transport protocol")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e ResourceError) Error() string { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrResource(e error) bool { _, ok := e.(ResourceError); return ok }
