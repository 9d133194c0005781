// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registrar

import (
	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/storage"
)

// observer - queues notifications, always called with the registrar
// locked
type observer Registrar

func (o *observer) Notify(n handlespace.Notification) {
	o.notifications.Add(n)
}

// Maintain - one round of periodic work
func (r *Registrar) Maintain() {
	r.takeovers.Expire()

	r.Lock()
	now := r.now()
	purged := r.hs.PurgeExpiredPoolElements(now)
	notifications := make([]handlespace.Notification, 0, r.notifications.Length())
	for r.notifications.Length() > 0 {
		notifications = append(notifications, r.notifications.Remove().(handlespace.Notification))
	}
	var records []storage.Record
	if nil != r.snapshot && len(notifications) > 0 {
		records = storage.Records(r.hs)
	}
	r.Unlock()

	if purged > 0 {
		r.statistics.expired.Add(uint64(purged))
		r.log.Infof("expired: %d elements", purged)
	}

	for _, n := range notifications {
		r.log.Tracef("notify: %s", n)
		if nil != r.notify {
			r.notify(n)
		}
	}

	if nil != records {
		if err := r.snapshot.Save(records); nil != err {
			r.log.Errorf("snapshot save error: %s", err)
		}
	}
}

// Restore - register the elements of the snapshot, returns the number
// restored
//
// elements are restored with their original update time so those past
// their lifetime are purged at the next maintenance
func (r *Registrar) Restore() (int, error) {
	if nil == r.snapshot {
		return 0, nil
	}

	r.Lock()
	defer r.Unlock()

	n := 0
	err := r.snapshot.Load(func(record *storage.Record) error {
		registration := record.Registration
		_, err := r.hs.RegisterPoolElement(&registration, record.LastUpdate, OriginSnapshot)
		if nil != err {
			r.log.Warnf("restore: %s/$%08x  error: %s", registration.Handle, registration.Identifier, err)
			return nil
		}
		n += 1
		return nil
	})
	if nil != err {
		return n, err
	}
	r.log.Infof("restored: %d elements", n)
	return n, nil
}
