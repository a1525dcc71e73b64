/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jan  8 10:19:05 2018 mstenber
 * Last modified: Mon Oct 12 11:49:02 2026 mstenber
 * Edit time:     3 min
 *
 */

package util

import "sync"

// SimpleWaitGroup is sync.WaitGroup that also starts the goroutines.
type SimpleWaitGroup struct {
	sync.WaitGroup
}

func (self *SimpleWaitGroup) Go(cb func()) {
	self.Add(1)
	go func() {
		defer self.Done()
		cb()
	}()
}
