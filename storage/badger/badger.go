/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 23 15:10:01 2017 mstenber
 * Last modified: Mon Oct 12 14:52:40 2026 mstenber
 * Edit time:     167 min
 *
 */

package badger

import (
	"github.com/dgraph-io/badger"
	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/pkg/errors"
)

// badgerBackend provides on-disk storage.
//
// - key prefix 1 + group/id -> state
// - key prefix 3 + name -> id
type badgerBackend struct {
	storage.DirectoryBackendBase
	db *badger.DB
}

var _ storage.Backend = &badgerBackend{}

var statePrefix = []byte("1")
var namePrefix = []byte("3")

func NewBadgerBackend() storage.Backend {
	return &badgerBackend{}
}

func (self *badgerBackend) Init(config storage.BackendConfiguration) error {
	err := self.DirectoryBackendBase.Init(config)
	if err != nil {
		return err
	}
	opts := badger.DefaultOptions
	opts.Dir = self.Dir
	opts.ValueDir = self.Dir
	db, err := badger.Open(opts)
	if err != nil {
		return errors.Wrap(err, "badger.Open")
	}
	self.db = db
	return nil
}

func (self *badgerBackend) Close() error {
	return self.db.Close()
}

func kk(prefix, suffix []byte) []byte {
	k := make([]byte, 0, len(prefix)+len(suffix))
	return append(append(k, prefix...), suffix...)
}

func (self *badgerBackend) getKKValue(prefix, suffix []byte) (v []byte, err error) {
	err = self.db.View(func(txn *badger.Txn) error {
		i, err := txn.Get(kk(prefix, suffix))
		if err == nil {
			v, err = i.ValueCopy(nil)
		}
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return
}

func (self *badgerBackend) setKKValue(prefix, suffix, value []byte) error {
	return self.db.Update(func(txn *badger.Txn) error {
		return txn.Set(kk(prefix, suffix), value)
	})
}

func (self *badgerBackend) deleteKK(prefix, suffix []byte) error {
	return self.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(kk(prefix, suffix))
	})
}

func (self *badgerBackend) GetState(key storage.StateKey) ([]byte, error) {
	v, err := self.getKKValue(statePrefix, key.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "badger get %v", key)
	}
	return v, nil
}

func (self *badgerBackend) GetIdByName(name string) (string, error) {
	v, err := self.getKKValue(namePrefix, []byte(name))
	if err != nil {
		return "", errors.Wrapf(err, "badger get name %v", name)
	}
	return string(v), nil
}

func (self *badgerBackend) SetState(key storage.StateKey, data []byte) error {
	mlog.Printf2("storage/badger/badger", "bad.SetState %v (%d b)", key, len(data))
	return self.setKKValue(statePrefix, key.Bytes(), data)
}

func (self *badgerBackend) DeleteState(key storage.StateKey) error {
	mlog.Printf2("storage/badger/badger", "bad.DeleteState %v", key)
	return self.deleteKK(statePrefix, key.Bytes())
}

func (self *badgerBackend) SetNameToId(name, id string) error {
	mlog.Printf2("storage/badger/badger", "bad.SetNameToId %s = %v", name, id)
	if id == "" {
		return self.deleteKK(namePrefix, []byte(name))
	}
	return self.setKKValue(namePrefix, []byte(name), []byte(id))
}
