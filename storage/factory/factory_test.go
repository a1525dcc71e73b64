/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 16:28:57 2018 mstenber
 * Last modified: Mon Oct 12 18:08:31 2026 mstenber
 * Edit time:     12 min
 *
 */

package factory

import (
	"errors"
	"testing"

	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/storage/storagetest"
	"github.com/stvp/assert"
)

func TestList(t *testing.T) {
	t.Parallel()
	l := List()
	assert.Equal(t, len(l), len(backendFactories))
	assert.Equal(t, l[0], "badger")
}

func TestUnknown(t *testing.T) {
	t.Parallel()
	_, err := New("nope", "")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestEmbedded(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"badger", "bolt", "file", "pebble"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			storagetest.ProdBackend(t, func() storage.Backend {
				be, err := New(name, dir)
				assert.Nil(t, err)
				return be
			}, true)
		})
	}
}

func TestStorage(t *testing.T) {
	t.Parallel()
	for _, pw := range []string{"", "secret"} {
		pw := pw
		t.Run("pw="+pw, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			config := StorageConfiguration{BackendName: "bolt",
				Password: pw, Iterations: 16}
			config.Directory = dir
			storagetest.ProdBackend(t, func() storage.Backend {
				be, err := NewStorage(config)
				assert.Nil(t, err)
				return be
			}, true)
		})
	}
}

func TestStorageWrongPassword(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	config := StorageConfiguration{BackendName: "file",
		Password: "secret", Iterations: 16}
	config.Directory = dir
	be, err := NewStorage(config)
	assert.Nil(t, err)
	k := storage.StateKey{Group: "tree", Id: "x"}
	assert.Nil(t, be.SetState(k, []byte("state")))
	assert.Nil(t, be.Close())

	config.Password = "wrong"
	be, err = NewStorage(config)
	assert.Nil(t, err)
	_, err = be.GetState(k)
	assert.True(t, err != nil)
}
