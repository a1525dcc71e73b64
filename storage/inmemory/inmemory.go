/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 17 22:20:08 2017 mstenber
 * Last modified: Mon Oct 12 14:40:12 2026 mstenber
 * Edit time:     81 min
 *
 */

package inmemory

import (
	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

// inMemoryBackend provides In-memory storage; data is always
// assumed to be available and is just stored in maps.
type inMemoryBackend struct {
	key2State map[storage.StateKey][]byte
	name2Id   map[string]string
	lock      util.RWMutexLocked
}

var _ storage.Backend = &inMemoryBackend{}

func NewInMemoryBackend() storage.Backend {
	self := &inMemoryBackend{}
	self.key2State = make(map[storage.StateKey][]byte)
	self.name2Id = make(map[string]string)
	return self
}

func (self *inMemoryBackend) Init(config storage.BackendConfiguration) error {
	return nil
}

func (self *inMemoryBackend) Close() error {
	return nil
}

func (self *inMemoryBackend) GetState(key storage.StateKey) ([]byte, error) {
	defer self.lock.RLocked()()
	v, ok := self.key2State[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (self *inMemoryBackend) GetIdByName(name string) (string, error) {
	defer self.lock.RLocked()()
	return self.name2Id[name], nil
}

func (self *inMemoryBackend) SetState(key storage.StateKey, data []byte) error {
	defer self.lock.Locked()()
	mlog.Printf2("storage/inmemory/inmemory", "im.SetState %v (%d b)", key, len(data))
	self.key2State[key] = append([]byte{}, data...)
	return nil
}

func (self *inMemoryBackend) DeleteState(key storage.StateKey) error {
	defer self.lock.Locked()()
	mlog.Printf2("storage/inmemory/inmemory", "im.DeleteState %v", key)
	delete(self.key2State, key)
	return nil
}

func (self *inMemoryBackend) SetNameToId(name, id string) error {
	defer self.lock.Locked()()
	if id == "" {
		delete(self.name2Id, name)
		return nil
	}
	self.name2Id[name] = id
	return nil
}
