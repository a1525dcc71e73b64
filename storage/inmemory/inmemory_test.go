/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 14:41:30 2026 mstenber
 * Last modified: Mon Oct 12 14:42:05 2026 mstenber
 * Edit time:     0 min
 *
 */

package inmemory

import (
	"testing"

	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/storage/storagetest"
)

func TestInMemory(t *testing.T) {
	t.Parallel()
	storagetest.ProdBackend(t, func() storage.Backend {
		return NewInMemoryBackend()
	}, false)
}
