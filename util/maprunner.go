/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sun Jan  7 16:45:31 2018 mstenber
 * Last modified: Mon Oct 12 10:48:12 2026 mstenber
 * Edit time:     71 min
 *
 */

package util

import (
	"errors"
	"sync"

	"github.com/fingon/go-actree/mlog"
)

type MapRunnerCallback func()

var ErrMapRunnerClosed = errors.New("MapRunner closed")

// MapRunner provides facility of running arbitrary set of goroutines
// that do not conflict with each other. The confliction is defined by
// the key provided alongside the callback. Conflicting callbacks are
// serialized, in the order they were submitted; at most one callback
// per key runs at any given time.
type MapRunner struct {
	busy             map[interface{}]bool
	blockedPerTarget map[interface{}][]MapRunnerCallback
	lock             MutexLocked
	closing          bool
	died             sync.Cond
	Ran, Queued      AtomicInt
}

// Close waits for current (and subsequently queued) callbacks to
// finish. Run fails after Close has been called.
func (self *MapRunner) Close() {
	defer self.lock.Locked()()
	self.closing = true
	if self.busy == nil {
		return
	}
	for len(self.busy) > 0 {
		self.died.Wait()
	}
}

// Busy returns the number of keys with a callback currently running.
func (self *MapRunner) Busy() int {
	defer self.lock.Locked()()
	return len(self.busy)
}

func (self *MapRunner) Run(key interface{}, cb MapRunnerCallback) error {
	defer self.lock.Locked()()
	if self.closing {
		return ErrMapRunnerClosed
	}
	if self.busy == nil {
		self.died.L = &self.lock
		self.busy = make(map[interface{}]bool)
		self.blockedPerTarget = make(map[interface{}][]MapRunnerCallback)
	}
	if self.busy[key] {
		mlog.Printf2("util/maprunner", "mr.Run queued %v", key)
		self.Queued.Add(1)
		self.blockedPerTarget[key] = append(self.blockedPerTarget[key], cb)
		return nil
	}
	mlog.Printf2("util/maprunner", "mr.Run immediate %v", key)
	self.Ran.Add(1)
	self.busy[key] = true
	go self.run(key, cb)
	return nil
}

func (self *MapRunner) run(key interface{}, cb MapRunnerCallback) {
	for cb != nil {
		cb()
		cb = self.checkMore(key)
	}
}

func (self *MapRunner) checkMore(key interface{}) MapRunnerCallback {
	defer self.lock.Locked()()
	l := self.blockedPerTarget[key]
	if len(l) == 0 {
		delete(self.busy, key)
		delete(self.blockedPerTarget, key)
		if len(self.busy) == 0 {
			self.died.Broadcast()
		}
		return nil
	}
	cb := l[0]
	l[0] = nil
	if len(l) == 1 {
		delete(self.blockedPerTarget, key)
	} else {
		self.blockedPerTarget[key] = l[1:]
	}
	self.Ran.Add(1)
	return cb
}
