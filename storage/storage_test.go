/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Thu Dec 14 19:19:24 2017 mstenber
 * Last modified: Mon Oct 12 14:15:20 2026 mstenber
 * Edit time:     48 min
 *
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fingon/go-actree/codec"
	"github.com/stvp/assert"
)

// mapBackend is the smallest possible Backend; the real ones live in
// subpackages which import this one.
type mapBackend struct {
	state map[StateKey][]byte
	names map[string]string
}

func (self *mapBackend) Init(config BackendConfiguration) error {
	self.state = make(map[StateKey][]byte)
	self.names = make(map[string]string)
	return nil
}

func (self *mapBackend) Close() error { return nil }

func (self *mapBackend) GetState(key StateKey) ([]byte, error) {
	return self.state[key], nil
}

func (self *mapBackend) GetIdByName(name string) (string, error) {
	return self.names[name], nil
}

func (self *mapBackend) SetState(key StateKey, data []byte) error {
	self.state[key] = data
	return nil
}

func (self *mapBackend) DeleteState(key StateKey) error {
	delete(self.state, key)
	return nil
}

func (self *mapBackend) SetNameToId(name, id string) error {
	self.names[name] = id
	return nil
}

func TestStateKey(t *testing.T) {
	t.Parallel()
	k := StateKey{Group: "node", Id: "x"}
	assert.Equal(t, k.String(), "node/x")
	assert.Equal(t, string(k.Bytes()), "node/x")
}

func TestCodecBackend(t *testing.T) {
	t.Parallel()
	mb := &mapBackend{}
	mb.Init(BackendConfiguration{})
	c := codec.CodecChain{}.Init(codec.EncryptingCodec{}.Init([]byte("pw"), []byte("salt"), 64), &codec.CompressingCodec{})
	be := NewCodecBackend(mb, c)
	k1 := StateKey{Group: "node", Id: "1"}
	k2 := StateKey{Group: "node", Id: "2"}

	err := be.SetState(k1, []byte("hello"))
	assert.Nil(t, err)
	raw := mb.state[k1]
	assert.True(t, raw != nil)
	assert.NotEqual(t, string(raw), "hello")

	got, err := be.GetState(k1)
	assert.Nil(t, err)
	assert.Equal(t, string(got), "hello")

	got, err = be.GetState(k2)
	assert.Nil(t, err)
	assert.True(t, got == nil)

	// State moved to another key does not decode
	mb.state[k2] = raw
	_, err = be.GetState(k2)
	assert.True(t, err != nil)

	assert.Nil(t, be.SetNameToId("n", "1"))
	id, err := be.GetIdByName("n")
	assert.Nil(t, err)
	assert.Equal(t, id, "1")
	assert.Nil(t, be.DeleteState(k1))
	got, err = be.GetState(k1)
	assert.Nil(t, err)
	assert.True(t, got == nil)
	assert.Nil(t, be.Close())
}

func TestDirectoryBackendBase(t *testing.T) {
	t.Parallel()
	var db DirectoryBackendBase
	assert.Equal(t, db.Init(BackendConfiguration{}), ErrNoDirectory)
	dir := filepath.Join(t.TempDir(), "sub")
	assert.Nil(t, db.Init(BackendConfiguration{Directory: dir}))
	_, err := os.Stat(dir)
	assert.Nil(t, err)
	assert.Equal(t, db.Path("a", "b"), filepath.Join(dir, "a", "b"))
	assert.Nil(t, os.WriteFile(db.Path("x"), []byte("1234"), 0600))
	assert.Equal(t, db.BytesUsed(), uint64(4))
}
