/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Tue Oct 13 09:12:40 2026 mstenber
 * Last modified: Tue Oct 13 11:48:02 2026 mstenber
 * Edit time:     124 min
 *
 */

// actor package provides in-process actors with persistent state.
//
// An actor is identified by (group, id). Calls to single actor are
// executed one at a time, in submission order; calls to different
// actors run concurrently. Actor state is checkpointed to a
// storage.Backend whenever the call asks for it, and is reloaded from
// there when the actor is activated again (e.g. after it has been
// evicted from the activation cache, or in a new process).
//
// A call must never (directly or indirectly) wait for a call to
// itself; that deadlocks.
package actor

import (
	"github.com/bluele/gcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	ugorji "github.com/ugorji/go/codec"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

type ID string

const DefaultCacheSize = 1024

var ErrClosed = errors.New("actor host closed")

// Host dispatches calls to actors and owns their activations.
type Host struct {
	// Storage is where actor state is persisted. The host does
	// not close it.
	Storage storage.Backend

	// CacheSize is the number of activations kept in memory
	// (default DefaultCacheSize).
	CacheSize int

	// Statistics
	Calls, Loads, Writes, Releases util.AtomicInt

	runner *util.MapRunner
	names  *util.MutexLockedMap
	cache  gcache.Cache
}

var msgpackHandle = func() *ugorji.MsgpackHandle {
	h := &ugorji.MsgpackHandle{}
	h.WriteExt = true
	return h
}()

func (self Host) Init() *Host {
	if self.Storage == nil {
		mlog.Panicf("actor.Host without Storage")
	}
	if self.CacheSize <= 0 {
		self.CacheSize = DefaultCacheSize
	}
	self.runner = &util.MapRunner{}
	self.names = &util.MutexLockedMap{}
	self.cache = gcache.New(self.CacheSize).ARC().Build()
	return &self
}

// NewID returns fresh actor identifier.
func (self *Host) NewID() ID {
	return ID(uuid.NewString())
}

// Close waits for the calls in flight to finish; subsequent calls
// fail with ErrClosed.
func (self *Host) Close() {
	mlog.Printf2("actor/host", "Close")
	self.runner.Close()
	self.cache.Purge()
}

// Busy returns the number of actors currently executing a call.
func (self *Host) Busy() int {
	return self.runner.Busy()
}

// LookupName returns the id registered for name ("" if none).
func (self *Host) LookupName(name string) (ID, error) {
	id, err := self.Storage.GetIdByName(name)
	return ID(id), err
}

// LookupOrRegisterName returns the id registered for name. If there
// is none, create is called to produce one and it is registered.
// Concurrent callers for same name see the same id.
func (self *Host) LookupOrRegisterName(name string, create func() (ID, error)) (ID, error) {
	defer self.names.Locked(name)()
	id, err := self.LookupName(name)
	if err != nil || id != "" {
		return id, err
	}
	id, err = create()
	if err != nil {
		return "", err
	}
	mlog.Printf2("actor/host", "registering name %v = %v", name, id)
	err = self.Storage.SetNameToId(name, string(id))
	if err != nil {
		return "", errors.Wrapf(err, "registering %v", name)
	}
	return id, nil
}

// UnregisterName removes the name mapping (the actor stays).
func (self *Host) UnregisterName(name string) error {
	defer self.names.Locked(name)()
	return self.Storage.SetNameToId(name, "")
}

func (self *Host) load(key storage.StateKey, value interface{}) (exists bool, err error) {
	var data []byte
	if v, cerr := self.cache.GetIFPresent(key); cerr == nil {
		data = v.([]byte)
	} else {
		self.Loads.Add(1)
		data, err = self.Storage.GetState(key)
		if err != nil {
			return false, errors.Wrapf(err, "loading %v", key)
		}
		if data == nil {
			return false, nil
		}
		self.cache.Set(key, data)
	}
	err = ugorji.NewDecoderBytes(data, msgpackHandle).Decode(value)
	if err != nil {
		return false, errors.Wrapf(err, "decoding %v", key)
	}
	return true, nil
}

func (self *Host) save(key storage.StateKey, value interface{}) error {
	var data []byte
	err := ugorji.NewEncoderBytes(&data, msgpackHandle).Encode(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %v", key)
	}
	self.Writes.Add(1)
	mlog.Printf2("actor/host", "save %v (%d b)", key, len(data))
	err = self.Storage.SetState(key, data)
	if err != nil {
		self.cache.Remove(key)
		return errors.Wrapf(err, "saving %v", key)
	}
	self.cache.Set(key, data)
	return nil
}

func (self *Host) release(key storage.StateKey) error {
	self.Releases.Add(1)
	mlog.Printf2("actor/host", "release %v", key)
	self.cache.Remove(key)
	err := self.Storage.DeleteState(key)
	if err != nil {
		return errors.Wrapf(err, "releasing %v", key)
	}
	return nil
}
