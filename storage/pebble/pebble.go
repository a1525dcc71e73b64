/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 15:40:02 2026 mstenber
 * Last modified: Mon Oct 12 16:02:31 2026 mstenber
 * Edit time:     22 min
 *
 */

package pebble

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

// pebbleBackend provides on-disk storage in pebble LSM.
//
// - key prefix 1 + group/id -> state
// - key prefix 3 + name -> id
type pebbleBackend struct {
	storage.DirectoryBackendBase
	db *pebble.DB
}

var _ storage.Backend = &pebbleBackend{}

var statePrefix = []byte("1")
var namePrefix = []byte("3")

func NewPebbleBackend() storage.Backend {
	return &pebbleBackend{}
}

func (self *pebbleBackend) Init(config storage.BackendConfiguration) error {
	err := self.DirectoryBackendBase.Init(config)
	if err != nil {
		return err
	}
	db, err := pebble.Open(self.Dir, &pebble.Options{})
	if err != nil {
		return errors.Wrap(err, "pebble.Open")
	}
	self.db = db
	return nil
}

func (self *pebbleBackend) Close() error {
	return self.db.Close()
}

func (self *pebbleBackend) get(k []byte) ([]byte, error) {
	v, closer, err := self.db.Get(k)
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte{}, v...), nil
}

func (self *pebbleBackend) GetState(key storage.StateKey) ([]byte, error) {
	v, err := self.get(util.ConcatBytes(statePrefix, key.Bytes()))
	if err != nil {
		return nil, errors.Wrapf(err, "pebble get %v", key)
	}
	return v, nil
}

func (self *pebbleBackend) GetIdByName(name string) (string, error) {
	v, err := self.get(util.ConcatBytes(namePrefix, []byte(name)))
	if err != nil {
		return "", errors.Wrapf(err, "pebble get name %v", name)
	}
	return string(v), nil
}

func (self *pebbleBackend) SetState(key storage.StateKey, data []byte) error {
	mlog.Printf2("storage/pebble/pebble", "peb.SetState %v (%d b)", key, len(data))
	return self.db.Set(util.ConcatBytes(statePrefix, key.Bytes()), data, pebble.Sync)
}

func (self *pebbleBackend) DeleteState(key storage.StateKey) error {
	mlog.Printf2("storage/pebble/pebble", "peb.DeleteState %v", key)
	return self.db.Delete(util.ConcatBytes(statePrefix, key.Bytes()), pebble.Sync)
}

func (self *pebbleBackend) SetNameToId(name, id string) error {
	k := util.ConcatBytes(namePrefix, []byte(name))
	if id == "" {
		return self.db.Delete(k, pebble.Sync)
	}
	return self.db.Set(k, []byte(id), pebble.Sync)
}
