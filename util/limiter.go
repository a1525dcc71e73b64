/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan 11 07:40:22 2018 mstenber
 * Last modified: Mon Oct 12 11:20:31 2026 mstenber
 * Edit time:     24 min
 *
 */

package util

import (
	"runtime"
	"sync"
)

const DefaultPerCPU = 1

// ParallelLimiter provides a way of ensuring that at most N
// particular things occur at same time. It is essentially semaphore
// with trivial API. (either defer Limited()(), or Go(func))
//
// Bulk tree loading uses it to bound the number of concurrent
// inserts in flight.
type ParallelLimiter struct {
	// How many things are allowed per CPU (defaults to DefaultPerCPU)
	LimitPerCPU int

	// How many things are allowed by total (by default using
	// LimitPerCPU to calculate this)
	LimitTotal int

	lock        MutexLocked
	cond        sync.Cond
	running     int
	initialized bool
	wg          sync.WaitGroup
}

func (self *ParallelLimiter) init() {
	perCPU := IOr(self.LimitPerCPU, DefaultPerCPU)
	self.LimitTotal = IOr(self.LimitTotal, runtime.NumCPU()*perCPU)
	self.cond.L = &self.lock
	self.initialized = true
}

// Limited2 reserves 'count' execution slots.
func (self *ParallelLimiter) Limited2(count int) func() {
	defer self.lock.Locked()()

	if !self.initialized {
		self.init()
	}
	count = IMin(count, self.LimitTotal)
	for (self.running + count) > self.LimitTotal {
		self.cond.Wait()
	}
	self.running += count
	return func() {
		defer self.lock.Locked()()
		self.running -= count
		self.cond.Broadcast()
	}
}

func (self *ParallelLimiter) Limited() func() {
	return self.Limited2(1)
}

// Go runs cb in a goroutine once a slot is available. Wait returns
// when every callback started with Go has returned.
func (self *ParallelLimiter) Go(cb func()) {
	unlock := self.Limited()
	self.wg.Add(1)
	go func() {
		defer self.wg.Done()
		defer unlock()
		cb()
	}()
}

func (self *ParallelLimiter) Wait() {
	self.wg.Wait()
}
