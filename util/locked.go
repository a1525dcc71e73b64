/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan  4 12:21:40 2018 mstenber
 * Last modified: Mon Oct 12 10:21:07 2026 mstenber
 * Edit time:     21 min
 *
 */

package util

import "sync"

// MutexLocked is sync.Mutex with the convenience of
// 'defer x.Locked()()'.
type MutexLocked sync.Mutex

func (self *MutexLocked) Lock() {
	(*sync.Mutex)(self).Lock()
}

func (self *MutexLocked) Unlock() {
	(*sync.Mutex)(self).Unlock()
}

func (self *MutexLocked) Locked() (unlock func()) {
	mut := (*sync.Mutex)(self)
	mut.Lock()
	return mut.Unlock
}

// RWMutexLocked is the read-write variant; readers use RLocked.
type RWMutexLocked sync.RWMutex

func (self *RWMutexLocked) Locked() (unlock func()) {
	mut := (*sync.RWMutex)(self)
	mut.Lock()
	return mut.Unlock
}

func (self *RWMutexLocked) RLocked() (unlock func()) {
	mut := (*sync.RWMutex)(self)
	mut.RLock()
	return mut.RUnlock
}
