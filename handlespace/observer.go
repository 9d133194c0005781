// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"fmt"

	"github.com/bitmark-inc/rserpoold/checksum"
	"github.com/bitmark-inc/rserpoold/poolhandle"
)

// Action - kind of change to an element
type Action int

// notification actions
const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionDelete
)

// String - action name
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Notification - description of a single element change
//
// PreviousChecksum and PreviousOwner hold the values before the change
// so a peer can adjust its per owner view incrementally
type Notification struct {
	Action           Action
	Handle           poolhandle.Handle
	Identifier       uint32
	HomeRegistrar    uint32
	Checksum         checksum.Accumulator
	PreviousChecksum checksum.Accumulator
	PreviousOwner    uint32
}

//go:generate mockgen -destination=mocks/observer.go -package=mocks github.com/bitmark-inc/rserpoold/handlespace Observer

// Observer - receives every create, update and delete
//
// Notify is called synchronously while the handlespace is being
// modified and must not call back into it
type Observer interface {
	Notify(n Notification)
}

// String - for logging
func (n Notification) String() string {
	return fmt.Sprintf("%s %s/$%08x owner=$%08x←$%08x sum=$%04x←$%04x",
		n.Action, n.Handle, n.Identifier, n.HomeRegistrar, n.PreviousOwner,
		n.Checksum.Finish(), n.PreviousChecksum.Finish())
}

func (hs *Handlespace[T]) notify(action Action, e *Element[T], previousChecksum checksum.Accumulator, previousOwner uint32) {
	if nil == hs.observer {
		return
	}
	hs.observer.Notify(Notification{
		Action:           action,
		Handle:           e.Pool.Handle,
		Identifier:       e.Identifier,
		HomeRegistrar:    e.HomeRegistrar,
		Checksum:         e.Checksum,
		PreviousChecksum: previousChecksum,
		PreviousOwner:    previousOwner,
	})
}
