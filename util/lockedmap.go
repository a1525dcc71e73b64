/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 01:52:26 2018 mstenber
 * Last modified: Mon Oct 12 10:25:40 2026 mstenber
 * Edit time:     24 min
 *
 */

package util

import "github.com/fingon/go-actree/mlog"

// MutexLockedMap provides one mutex per name. The per-name mutexes
// exist only while somebody holds or waits for them.
type MutexLockedMap struct {
	l MutexLocked
	m map[interface{}]*MutexLocked
	q map[interface{}]int
}

// Len returns the number of names currently locked (or waited for).
func (self *MutexLockedMap) Len() int {
	defer self.l.Locked()()
	return len(self.m)
}

func (self *MutexLockedMap) Locked(name interface{}) func() {
	self.l.Lock()
	if self.m == nil {
		self.m = make(map[interface{}]*MutexLocked)
		self.q = make(map[interface{}]int)
	}
	ll := self.m[name]
	if ll == nil {
		mlog.Printf2("util/lockedmap", "Locked created lock %v", name)
		ll = &MutexLocked{}
		self.m[name] = ll
	}
	self.q[name]++
	self.l.Unlock()
	ll.Lock()
	mlog.Printf2("util/lockedmap", "Locked %v", name)
	return func() {
		defer self.l.Locked()()
		mlog.Printf2("util/lockedmap", "Releasing %v", name)
		self.q[name]--
		if self.q[name] == 0 {
			delete(self.m, name)
			delete(self.q, name)
		}
		ll.Unlock()
	}
}
