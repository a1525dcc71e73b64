/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 15:25:00 2026 mstenber
 * Last modified: Mon Oct 12 15:31:44 2026 mstenber
 * Edit time:     6 min
 *
 */

package file

import (
	"fmt"
	"testing"

	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/storage/storagetest"
	"github.com/fingon/go-actree/util"
	"github.com/stvp/assert"
)

func TestFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	storagetest.ProdBackend(t, func() storage.Backend {
		be := NewFileBackend()
		err := be.Init(storage.BackendConfiguration{Directory: dir})
		assert.Nil(t, err)
		return be
	}, true)
}

func TestFileConcurrentWrites(t *testing.T) {
	t.Parallel()
	be := NewFileBackend()
	assert.Nil(t, be.Init(storage.BackendConfiguration{Directory: t.TempDir()}))
	k := storage.StateKey{Group: "node", Id: "x"}
	var wg util.SimpleWaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Go(func() {
			be.SetState(k, []byte(fmt.Sprintf("v%02d", i)))
		})
	}
	wg.Wait()
	v, err := be.GetState(k)
	assert.Nil(t, err)
	assert.Equal(t, len(v), 3)
}
