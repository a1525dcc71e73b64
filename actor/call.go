/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Tue Oct 13 10:02:33 2026 mstenber
 * Last modified: Tue Oct 13 11:44:10 2026 mstenber
 * Edit time:     38 min
 *
 */

package actor

import (
	"context"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

// CallFunc is the body of a call. It is executed with exclusive
// access to the actor's state.
type CallFunc[T, R any] func(st *State[T]) (R, error)

// Call executes cb as actor (group, id) with state of type T. The
// call is queued behind the calls already submitted to the same
// actor. If ctx ends first, Call returns ctx.Err() without waiting;
// the call itself still runs to completion.
func Call[T, R any](ctx context.Context, host *Host, group string, id ID, cb CallFunc[T, R]) (R, error) {
	key := storage.StateKey{Group: group, Id: string(id)}
	f := util.NewFuture[R]()
	host.Calls.Add(1)
	err := host.runner.Run(key, func() {
		mlog.Printf2("actor/call", "call %v", key)
		st := &State[T]{key: key, host: host}
		exists, err := host.load(key, &st.Value)
		if err != nil {
			var zero R
			f.Set(zero, err)
			return
		}
		st.exists = exists
		f.Set(cb(st))
	})
	if err != nil {
		var zero R
		return zero, ErrClosed
	}
	return f.Wait(ctx)
}

// Release removes the persistent state of the actor, after the
// calls already queued for it have run.
func Release(ctx context.Context, host *Host, group string, id ID) error {
	key := storage.StateKey{Group: group, Id: string(id)}
	f := util.NewFuture[bool]()
	err := host.runner.Run(key, func() {
		f.Set(true, host.release(key))
	})
	if err != nil {
		return ErrClosed
	}
	_, err = f.Wait(ctx)
	return err
}
