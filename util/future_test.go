/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 16:52:11 2018 mstenber
 * Last modified: Mon Oct 12 11:44:30 2026 mstenber
 * Edit time:     6 min
 *
 */

package util

import (
	"context"
	"errors"
	"testing"

	"github.com/stvp/assert"
)

func TestFuture(t *testing.T) {
	t.Parallel()
	f := NewFuture[int]()
	assert.True(t, !f.Done())
	go f.Set(42, nil)
	v, err := f.Get()
	assert.Nil(t, err)
	assert.Equal(t, v, 42)
	f.Set(7, errors.New("ignored"))
	v, err = f.Wait(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, v, 42)
	assert.True(t, f.Done())
}

func TestFutureCancel(t *testing.T) {
	t.Parallel()
	f := NewFuture[string]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Wait(ctx)
	assert.Equal(t, err, context.Canceled)
}
