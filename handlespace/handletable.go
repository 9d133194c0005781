// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace

import (
	"github.com/bitmark-inc/rserpoold/poolhandle"
)

// MaxHandleTableElements - most elements returned by one extraction
const MaxHandleTableElements = 1024

// HandleTableFlags - extraction mode
type HandleTableFlags uint32

// extraction flags
const (
	HandleTableStart         HandleTableFlags = 1 << 0 // ignore the cursor, start from the beginning
	HandleTableOwnChildsOnly HandleTableFlags = 1 << 1 // only elements of one home registrar
)

// HandleTableExtract - resume position of a paged extraction
type HandleTableExtract struct {
	LastPoolHandle poolhandle.Handle
	LastIdentifier uint32
}

// GetHandleTable - next page of at most maxElements elements
//
// the cursor is advanced past the returned elements, an empty page
// means the extraction is complete.  With HandleTableOwnChildsOnly
// only elements whose home is homeRegistrar are returned.
func (hs *Handlespace[T]) GetHandleTable(homeRegistrar uint32, cursor *HandleTableExtract, flags HandleTableFlags, maxElements int) []*Element[T] {
	if maxElements > MaxHandleTableElements {
		maxElements = MaxHandleTableElements
	}
	if maxElements < 1 {
		return []*Element[T]{}
	}
	if 0 != flags&HandleTableStart {
		*cursor = HandleTableExtract{}
	}

	var page []*Element[T]
	if 0 != flags&HandleTableOwnChildsOnly {
		page = hs.extractOwnership(homeRegistrar, cursor, maxElements)
	} else {
		page = hs.extractGlobal(cursor, maxElements)
	}

	if n := len(page); n > 0 {
		cursor.LastPoolHandle = page[n-1].Pool.Handle
		cursor.LastIdentifier = page[n-1].Identifier
	}
	return page
}

// walk pools, then identifiers within each pool
func (hs *Handlespace[T]) extractGlobal(cursor *HandleTableExtract, maxElements int) []*Element[T] {
	page := make([]*Element[T], 0, maxElements)

	var e *Element[T]
	pool := hs.FindPool(cursor.LastPoolHandle)
	if nil != pool {
		e = pool.nearestNext(cursor.LastIdentifier)
	} else {
		pool = hs.nearestNextPool(cursor.LastPoolHandle)
		if nil != pool {
			e = pool.FirstElement()
		}
	}

	for nil != pool && len(page) < maxElements {
		if nil == e {
			pool = hs.NextPool(pool)
			if nil != pool {
				e = pool.FirstElement()
			}
			continue
		}
		page = append(page, e)
		e = pool.NextElement(e)
	}
	return page
}

// walk the ownership index of one home registrar
func (hs *Handlespace[T]) extractOwnership(homeRegistrar uint32, cursor *HandleTableExtract, maxElements int) []*Element[T] {
	page := make([]*Element[T], 0, maxElements)
	e := hs.nextOwnershipAfter(homeRegistrar, cursor.LastPoolHandle, cursor.LastIdentifier)
	for nil != e && len(page) < maxElements {
		page = append(page, e)
		e = hs.NextOwnershipForSameIdentifier(e)
	}
	return page
}
