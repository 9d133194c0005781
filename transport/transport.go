// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport - the transport addresses of a pool element or of
// the registrator that registered it
package transport

import (
	"fmt"
	"net"
	"strings"
)

// Protocol - IP protocol number
type Protocol uint8

// supported protocols
const (
	TCP  Protocol = 6
	UDP  Protocol = 17
	SCTP Protocol = 132
)

// Flags - address block options
type Flags uint32

// ControlChannel - the element expects ASAP control traffic on its
// data channel
const ControlChannel Flags = 1 << 0

// MaxAddresses - most addresses in one block
const MaxAddresses = 64

// AddressBlock - one port and a list of addresses for one protocol
type AddressBlock struct {
	Protocol  Protocol
	Port      uint16
	Flags     Flags
	Addresses []net.IP
}

// New - create a block, the addresses are copied
func New(protocol Protocol, port uint16, flags Flags, addresses ...net.IP) *AddressBlock {
	a := &AddressBlock{
		Protocol: protocol,
		Port:     port,
		Flags:    flags,
	}
	a.Addresses = copyAddresses(addresses)
	return a
}

// Duplicate - deep copy sharing no memory with the original
func (a *AddressBlock) Duplicate() *AddressBlock {
	if nil == a {
		return nil
	}
	return New(a.Protocol, a.Port, a.Flags, a.Addresses...)
}

func copyAddresses(addresses []net.IP) []net.IP {
	result := make([]net.IP, len(addresses))
	for i, ip := range addresses {
		result[i] = append(net.IP(nil), ip...)
	}
	return result
}

// HasControlChannel - test the control channel flag
func (a *AddressBlock) HasControlChannel() bool {
	return nil != a && 0 != a.Flags&ControlChannel
}

// IsValidUser - usable as a pool element's user transport
func (a *AddressBlock) IsValidUser() bool {
	return nil != a &&
		0 != a.Port &&
		len(a.Addresses) >= 1 && len(a.Addresses) <= MaxAddresses &&
		validAddresses(a.Addresses)
}

// IsValidRegistrator - usable as the registrator transport: SCTP only
// and never a control channel
func (a *AddressBlock) IsValidRegistrator() bool {
	return a.IsValidUser() &&
		SCTP == a.Protocol &&
		!a.HasControlChannel()
}

func validAddresses(addresses []net.IP) bool {
	for _, ip := range addresses {
		if net.IPv4len != len(ip) && net.IPv6len != len(ip) {
			return false
		}
	}
	return true
}

// Equal - same protocol, port, flags and address list
func (a *AddressBlock) Equal(b *AddressBlock) bool {
	if nil == a || nil == b {
		return a == b
	}
	if a.Protocol != b.Protocol || a.Port != b.Port || a.Flags != b.Flags || len(a.Addresses) != len(b.Addresses) {
		return false
	}
	for i := range a.Addresses {
		if !a.Addresses[i].Equal(b.Addresses[i]) {
			return false
		}
	}
	return true
}

// String - description for logs and dumps
func (a *AddressBlock) String() string {
	if nil == a {
		return "(none)"
	}
	s := make([]string, len(a.Addresses))
	for i, ip := range a.Addresses {
		s[i] = ip.String()
	}
	cc := ""
	if a.HasControlChannel() {
		cc = " cc"
	}
	return fmt.Sprintf("%s:%d[%s]%s", a.Protocol, a.Port, strings.Join(s, ","), cc)
}

// String - protocol name
func (p Protocol) String() string {
	switch p {
	case TCP:
		return "tcp"
	case UDP:
		return "udp"
	case SCTP:
		return "sctp"
	}
	return fmt.Sprintf("proto-%d", uint8(p))
}

// ProtocolFromName - reverse of String for configuration files
func ProtocolFromName(name string) (Protocol, bool) {
	switch strings.ToLower(name) {
	case "tcp":
		return TCP, true
	case "udp":
		return UDP, true
	case "sctp":
		return SCTP, true
	}
	return 0, false
}
