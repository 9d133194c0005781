// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// Code - numeric error cause as carried in an RSerPool error parameter
type Code uint16

// error cause values
const (
	CodeOkay                        Code = 0x0000
	CodeOutOfMemory                 Code = 0x1002
	CodeNoResources                 Code = 0xf002
	CodeNotFound                    Code = 0xf003
	CodeInvalidID                   Code = 0xf004
	CodeOwnID                       Code = 0xf005
	CodeDuplicateID                 Code = 0xf006
	CodeWrongProtocol               Code = 0xf007
	CodeWrongControlChannelHandling Code = 0xf008
	CodeIncompatiblePoolPolicy      Code = 0xf009
	CodeInvalidPoolPolicy           Code = 0xf00a
	CodeInvalidPoolHandle           Code = 0xf00b
	CodeInvalidAddresses            Code = 0xf00c
	CodeInvalidRegistrator          Code = 0xf00d
	CodeRateLimited                 Code = 0xf010
	CodeUnspecified                 Code = 0xffff
)

var codes = map[error]Code{
	ErrOutOfMemory:                 CodeOutOfMemory,
	ErrNoResources:                 CodeNoResources,
	ErrNotFound:                    CodeNotFound,
	ErrInvalidID:                   CodeInvalidID,
	ErrOwnID:                       CodeOwnID,
	ErrDuplicateID:                 CodeDuplicateID,
	ErrWrongProtocol:               CodeWrongProtocol,
	ErrWrongControlChannelHandling: CodeWrongControlChannelHandling,
	ErrIncompatiblePoolPolicy:      CodeIncompatiblePoolPolicy,
	ErrInvalidPoolPolicy:           CodeInvalidPoolPolicy,
	ErrInvalidPoolHandle:           CodeInvalidPoolHandle,
	ErrInvalidAddresses:            CodeInvalidAddresses,
	ErrInvalidRegistrator:          CodeInvalidRegistrator,
	ErrRateLimited:                 CodeRateLimited,
}

// CodeOf - map an error to its wire cause code
//
// nil maps to CodeOkay and any error outside the registry set maps to
// CodeUnspecified
func CodeOf(err error) Code {
	if nil == err {
		return CodeOkay
	}
	if c, ok := codes[err]; ok {
		return c
	}
	return CodeUnspecified
}

// String - printable cause name
func (c Code) String() string {
	switch c {
	case CodeOkay:
		return "okay"
	case CodeUnspecified:
		return "unspecified"
	}
	for err, code := range codes {
		if code == c {
			return err.Error()
		}
	}
	return "unknown"
}
