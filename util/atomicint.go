/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Mar 21 11:19:49 2018 mstenber
 * Last modified: Mon Oct 12 11:10:02 2026 mstenber
 * Edit time:     9 min
 *
 */

package util

import "sync/atomic"

// AtomicInt is a counter usable without locks; the actor host and
// the map runner use it for their statistics.
type AtomicInt int64

func (self *AtomicInt) Get() int64 {
	return atomic.LoadInt64((*int64)(self))
}

func (self *AtomicInt) GetInt() int {
	return int(self.Get())
}

func (self *AtomicInt) Add(value int64) int64 {
	return atomic.AddInt64((*int64)(self), value)
}

func (self *AtomicInt) AddInt(value int) int {
	return int(self.Add(int64(value)))
}

func (self *AtomicInt) Set(value int64) {
	atomic.StoreInt64((*int64)(self), value)
}

func (self *AtomicInt) CompareAndSwap(old, value int64) bool {
	return atomic.CompareAndSwapInt64((*int64)(self), old, value)
}
