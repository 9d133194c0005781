// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/rserpoold/fault"
)

const (
	fileWatcherLoggerPrefix = "file-watcher"
)

// WatcherChannel - events from the configuration file
type WatcherChannel struct {
	change chan struct{}
	remove chan struct{}
}

func newWatcherChannel() WatcherChannel {
	return WatcherChannel{
		change: make(chan struct{}, 1),
		remove: make(chan struct{}, 1),
	}
}

// FileWatcher - signal changes to one file
//
// the directory is watched rather than the file so editors that
// replace the file by rename still produce change events
type FileWatcher struct {
	log      *logger.L
	channel  WatcherChannel
	watcher  *fsnotify.Watcher
	filePath string
	done     chan struct{}
}

func newFileWatcher(targetFile string, log *logger.L, channel WatcherChannel) (*FileWatcher, error) {
	filePath, err := filepath.Abs(filepath.Clean(targetFile))
	if nil != err {
		return nil, err
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fault.ErrNotFound
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	return &FileWatcher{
		log:      log,
		channel:  channel,
		watcher:  watcher,
		filePath: filePath,
		done:     make(chan struct{}),
	}, nil
}

// Start - begin watching in the background
func (w *FileWatcher) Start() error {
	err := w.watcher.Add(filepath.Dir(w.filePath))
	if nil != err {
		w.log.Errorf("watcher add error: %s", err)
		return err
	}

	go w.run()
	return nil
}

// Stop - end watching
func (w *FileWatcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *FileWatcher) run() {
	defer close(w.done)

loop:
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			if filepath.Clean(event.Name) != w.filePath {
				continue loop
			}
			w.log.Debugf("file event: %v", event)

			if watcherEventFileRemove(event) {
				w.log.Warnf("file: %q removed", w.filePath)
				w.sendEvent(w.channel.remove, "remove")
				continue loop
			}
			if watcherEventFileChange(event) {
				w.sendEvent(w.channel.change, "change")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			w.log.Errorf("watcher error: %s", err)
		}
	}
	w.log.Info("stopped")
}

func isChannelFull(ch chan<- struct{}) bool {
	return len(ch) == cap(ch)
}

// non-blocking, an event already pending covers this one
func (w *FileWatcher) sendEvent(ch chan<- struct{}, name string) {
	if isChannelFull(ch) {
		w.log.Debugf("event channel %s full, discard event", name)
		return
	}
	ch <- struct{}{}
}

func watcherEventFileRemove(event fsnotify.Event) bool {
	return event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func watcherEventFileChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Chmod == fsnotify.Chmod
}
