// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"fmt"

	"github.com/bitmark-inc/rserpoold/poolhandle"
)

// index key items, each refers to the single element record and
// orders by fields of it that must not change while linked

func compareUint64(a uint64, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a int, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareHandleIdentifier[T any](a *Element[T], b *Element[T]) int {
	if c := a.Pool.Handle.Compare(b.Pool.Handle); 0 != c {
		return c
	}
	return compareUint64(uint64(a.Identifier), uint64(b.Identifier))
}

// pools of the handlespace, by handle
type poolItem[T any] struct {
	pool *Pool[T]
}

func (a poolItem[T]) Compare(b poolItem[T]) int {
	return a.pool.Handle.Compare(b.pool.Handle)
}

func (a poolItem[T]) String() string {
	return a.pool.Handle.String()
}

// elements of a pool, by identifier
type nameItem[T any] struct {
	e *Element[T]
}

func (a nameItem[T]) Compare(b nameItem[T]) int {
	return compareUint64(uint64(a.e.Identifier), uint64(b.e.Identifier))
}

func (a nameItem[T]) String() string {
	return fmt.Sprintf("$%08x", a.e.Identifier)
}

// elements of a pool, in policy order
type selectionItem[T any] struct {
	e *Element[T]
}

func (a selectionItem[T]) Compare(b selectionItem[T]) int {
	return a.e.Pool.Policy.Compare(&a.e.State, &b.e.State)
}

func (a selectionItem[T]) String() string {
	return fmt.Sprintf("$%08x seq=%d", a.e.Identifier, a.e.SeqNumber)
}

// active timers, earliest first
type timerItem[T any] struct {
	e *Element[T]
}

func (a timerItem[T]) Compare(b timerItem[T]) int {
	if c := compareUint64(a.e.TimerTimeStamp, b.e.TimerTimeStamp); 0 != c {
		return c
	}
	return compareHandleIdentifier(a.e, b.e)
}

func (a timerItem[T]) String() string {
	return fmt.Sprintf("%d:%d %s/$%08x", a.e.TimerTimeStamp, a.e.TimerCode, a.e.Pool.Handle, a.e.Identifier)
}

// elements registered through a connection
type connectionItem[T any] struct {
	e *Element[T]
}

func (a connectionItem[T]) Compare(b connectionItem[T]) int {
	if c := compareInt(a.e.ConnectionSocket, b.e.ConnectionSocket); 0 != c {
		return c
	}
	if c := compareUint64(uint64(a.e.ConnectionAssoc), uint64(b.e.ConnectionAssoc)); 0 != c {
		return c
	}
	return compareHandleIdentifier(a.e, b.e)
}

func (a connectionItem[T]) String() string {
	return fmt.Sprintf("%d/%d %s/$%08x", a.e.ConnectionSocket, a.e.ConnectionAssoc, a.e.Pool.Handle, a.e.Identifier)
}

// elements by home registrar
type ownershipItem[T any] struct {
	e *Element[T]
}

func (a ownershipItem[T]) Compare(b ownershipItem[T]) int {
	if c := compareUint64(uint64(a.e.HomeRegistrar), uint64(b.e.HomeRegistrar)); 0 != c {
		return c
	}
	return compareHandleIdentifier(a.e, b.e)
}

func (a ownershipItem[T]) String() string {
	return fmt.Sprintf("$%08x %s/$%08x", a.e.HomeRegistrar, a.e.Pool.Handle, a.e.Identifier)
}

// probe - an unlinked element used only as a search key
func probe[T any](handle poolhandle.Handle, identifier uint32) *Element[T] {
	e := &Element[T]{Pool: &Pool[T]{Handle: handle}}
	e.Identifier = identifier
	return e
}

// element - the record an item refers to, for consistency checks
func (a timerItem[T]) element() any      { return a.e }
func (a connectionItem[T]) element() any { return a.e }
func (a ownershipItem[T]) element() any  { return a.e }
