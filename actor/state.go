/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Tue Oct 13 09:40:11 2026 mstenber
 * Last modified: Tue Oct 13 11:20:54 2026 mstenber
 * Edit time:     22 min
 *
 */

package actor

import "github.com/fingon/go-actree/storage"

// State is the handle to actor's persistent state, valid only within
// the call it was given to. Changes to Value become durable (and
// visible to later calls) only through Write.
type State[T any] struct {
	Value T

	key    storage.StateKey
	host   *Host
	exists bool
}

// Exists tells if the state has been written at some point (and not
// cleared since).
func (self *State[T]) Exists() bool {
	return self.exists
}

func (self *State[T]) Id() ID {
	return ID(self.key.Id)
}

func (self *State[T]) Host() *Host {
	return self.host
}

// Write checkpoints Value to storage.
func (self *State[T]) Write() error {
	err := self.host.save(self.key, &self.Value)
	if err == nil {
		self.exists = true
	}
	return err
}

// Clear releases the actor: its state is removed from storage and
// the activation is dropped. Value is reset to the zero value.
func (self *State[T]) Clear() error {
	var zero T
	self.Value = zero
	self.exists = false
	return self.host.release(self.key)
}
