/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 15:44:41 2018 mstenber
 * Last modified: Mon Oct 12 15:24:12 2026 mstenber
 * Edit time:     104 min
 *
 */

package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

// fileBackend stores the state in file directory hierarchy.
//
// Name encoding:
//
// - names/ directory has files with hex encoded name of link,
// containing raw bytes for the id.
//
// State encoding:
//
// - states/<group>/ directory contains the states, with hex dumped ids
// as names. Files are replaced atomically (write + rename).
//
// Number of characters used for subdirectory name can be also chosen,
// as keeping all states in same location does not make sense.

const directoryBytes = 1

type fileBackend struct {
	storage.DirectoryBackendBase
	created  map[string]bool
	dirLock  util.MutexLocked
	pathLock util.MutexLockedMap
}

var _ storage.Backend = &fileBackend{}

func NewFileBackend() storage.Backend {
	return &fileBackend{}
}

func (self *fileBackend) Init(config storage.BackendConfiguration) error {
	self.created = make(map[string]bool)
	return self.DirectoryBackendBase.Init(config)
}

func (self *fileBackend) Close() error {
	return nil
}

func (self *fileBackend) mkdirAll(path string) error {
	defer self.dirLock.Locked()()
	if self.created[path] {
		return nil
	}
	err := os.MkdirAll(path, 0700)
	if err != nil {
		return errors.Wrapf(err, "mkdir %v", path)
	}
	self.created[path] = true
	return nil
}

func (self *fileBackend) statePath(key storage.StateKey) (dir string, full string) {
	hid := fmt.Sprintf("%x", key.Id)
	sub := hid
	if len(sub) > 2*directoryBytes {
		sub = sub[:2*directoryBytes]
	}
	dir = self.Path("states", fmt.Sprintf("%x", key.Group), sub)
	full = filepath.Join(dir, hid)
	return
}

func (self *fileBackend) namePath(name string) (dir string, full string) {
	dir = self.Path("names")
	full = filepath.Join(dir, fmt.Sprintf("%x", name))
	return
}

func (self *fileBackend) read(path string) ([]byte, error) {
	defer self.pathLock.Locked(path)()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %v", path)
	}
	return b, nil
}

func (self *fileBackend) write(dir, path string, data []byte) error {
	if err := self.mkdirAll(dir); err != nil {
		return err
	}
	defer self.pathLock.Locked(path)()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrapf(err, "write %v", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "rename %v", tmp)
	}
	mlog.Printf2("storage/file/file", " wrote to %v", path)
	return nil
}

func (self *fileBackend) remove(path string) error {
	defer self.pathLock.Locked(path)()
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %v", path)
	}
	return nil
}

func (self *fileBackend) GetState(key storage.StateKey) ([]byte, error) {
	mlog.Printf2("storage/file/file", "fb.GetState %v", key)
	_, path := self.statePath(key)
	return self.read(path)
}

func (self *fileBackend) GetIdByName(name string) (string, error) {
	mlog.Printf2("storage/file/file", "fb.GetIdByName %v", name)
	_, path := self.namePath(name)
	b, err := self.read(path)
	return string(b), err
}

func (self *fileBackend) SetState(key storage.StateKey, data []byte) error {
	mlog.Printf2("storage/file/file", "fb.SetState %v (%d b)", key, len(data))
	dir, path := self.statePath(key)
	return self.write(dir, path, data)
}

func (self *fileBackend) DeleteState(key storage.StateKey) error {
	mlog.Printf2("storage/file/file", "fb.DeleteState %v", key)
	_, path := self.statePath(key)
	return self.remove(path)
}

func (self *fileBackend) SetNameToId(name, id string) error {
	mlog.Printf2("storage/file/file", "fb.SetNameToId %v %v", name, id)
	dir, path := self.namePath(name)
	if id == "" {
		return self.remove(path)
	}
	return self.write(dir, path, []byte(id))
}
