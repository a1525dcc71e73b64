/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 22:49:15 2018 mstenber
 * Last modified: Mon Oct 12 15:06:20 2026 mstenber
 * Edit time:     52 min
 *
 */

package bolt

import (
	bbolt "github.com/coreos/bbolt"
	"github.com/pkg/errors"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
)

var nameKey = []byte("name")

const groupPrefix = "state:"

// boltBackend provides on-disk storage in single bbolt database.
//
// - bucket state:<group>: id -> state
// - bucket name: name -> id
type boltBackend struct {
	storage.DirectoryBackendBase

	db *bbolt.DB
}

var _ storage.Backend = &boltBackend{}

func NewBoltBackend() storage.Backend {
	return &boltBackend{}
}

func groupBucket(group string) []byte {
	return []byte(groupPrefix + group)
}

func (self *boltBackend) Init(config storage.BackendConfiguration) error {
	err := self.DirectoryBackendBase.Init(config)
	if err != nil {
		return err
	}
	db, err := bbolt.Open(self.Path("bbolt.db"), 0600, nil)
	if err != nil {
		return errors.Wrap(err, "bbolt.Open")
	}
	self.db = db
	return db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(nameKey)
		return err
	})
}

func (self *boltBackend) Close() error {
	return self.db.Close()
}

// get returns copy of the value; bbolt values are valid only within
// the transaction.
func (self *boltBackend) get(bucket, key []byte) (v []byte) {
	self.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if bv := b.Get(key); bv != nil {
			v = append([]byte{}, bv...)
		}
		return nil
	})
	return
}

func (self *boltBackend) GetState(key storage.StateKey) ([]byte, error) {
	mlog.Printf2("storage/bolt/bolt", "bbolt.GetState %v", key)
	return self.get(groupBucket(key.Group), []byte(key.Id)), nil
}

func (self *boltBackend) GetIdByName(name string) (string, error) {
	return string(self.get(nameKey, []byte(name))), nil
}

func (self *boltBackend) SetState(key storage.StateKey, data []byte) error {
	mlog.Printf2("storage/bolt/bolt", "bbolt.SetState %v (%d b)", key, len(data))
	return self.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(groupBucket(key.Group))
		if err != nil {
			return err
		}
		return b.Put([]byte(key.Id), data)
	})
}

func (self *boltBackend) DeleteState(key storage.StateKey) error {
	mlog.Printf2("storage/bolt/bolt", "bbolt.DeleteState %v", key)
	return self.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(groupBucket(key.Group))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key.Id))
	})
}

func (self *boltBackend) SetNameToId(name, id string) error {
	return self.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(nameKey)
		if id == "" {
			return b.Delete([]byte(name))
		}
		return b.Put([]byte(name), []byte(id))
	})
}
