/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 16:39:55 2018 mstenber
 * Last modified: Mon Oct 12 11:38:14 2026 mstenber
 * Edit time:     19 min
 *
 */

package util

import (
	"context"
	"sync"
)

// Future is a value that becomes available at some later point,
// produced by a single Set call.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Set provides the result; only the first call has any effect.
func (self *Future[T]) Set(value T, err error) {
	self.once.Do(func() {
		self.value = value
		self.err = err
		close(self.done)
	})
}

// Get blocks until Set has been called.
func (self *Future[T]) Get() (T, error) {
	<-self.done
	return self.value, self.err
}

// Wait is Get that gives up when ctx is done. The producer is not
// affected.
func (self *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-self.done:
		return self.value, self.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (self *Future[T]) Done() bool {
	select {
	case <-self.done:
		return true
	default:
		return false
	}
}
