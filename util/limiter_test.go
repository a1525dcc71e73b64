/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 11:21:02 2026 mstenber
 * Last modified: Mon Oct 12 11:29:45 2026 mstenber
 * Edit time:     8 min
 *
 */

package util

import (
	"testing"

	"github.com/stvp/assert"
)

func TestParallelLimiter(t *testing.T) {
	t.Parallel()
	pl := ParallelLimiter{LimitTotal: 3}
	var running, peak, done AtomicInt
	for i := 0; i < 30; i++ {
		pl.Go(func() {
			now := running.Add(1)
			for {
				old := peak.Get()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			running.Add(-1)
			done.Add(1)
		})
	}
	pl.Wait()
	assert.Equal(t, done.GetInt(), 30)
	assert.True(t, peak.GetInt() <= 3)
	assert.True(t, peak.GetInt() >= 1)
}

func TestParallelLimiterDefault(t *testing.T) {
	t.Parallel()
	var pl ParallelLimiter
	unlock := pl.Limited2(1 << 20)
	unlock()
	assert.True(t, pl.LimitTotal >= 1)
}
