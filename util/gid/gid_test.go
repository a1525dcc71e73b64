/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan  4 13:00:27 2018 mstenber
 * Last modified: Mon Oct 12 12:04:51 2026 mstenber
 * Edit time:     3 min
 *
 */

package gid

import (
	"testing"

	"github.com/stvp/assert"
)

func TestGetGoroutineID(t *testing.T) {
	t.Parallel()
	me := GetGoroutineID()
	assert.True(t, me > 0)
	assert.Equal(t, GetGoroutineID(), me)
	ch := make(chan uint64)
	go func() {
		ch <- GetGoroutineID()
	}()
	assert.NotEqual(t, <-ch, me)
}

func BenchmarkGetGoroutineID(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetGoroutineID()
	}
}
