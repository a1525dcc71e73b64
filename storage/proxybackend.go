/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Jan  6 00:08:05 2018 mstenber
 * Last modified: Mon Oct 12 13:48:30 2026 mstenber
 * Edit time:     12 min
 *
 */

package storage

import "github.com/fingon/go-actree/mlog"

// proxyBackend forwards everything to the wrapped Backend; it is
// embedded by backends that modify only some of the calls.
type proxyBackend struct {
	Backend Backend
}

var _ Backend = &proxyBackend{}

func (self *proxyBackend) Init(config BackendConfiguration) error {
	return self.Backend.Init(config)
}

func (self *proxyBackend) Close() error {
	mlog.Printf2("storage/proxybackend", "proxying backend Close()")
	return self.Backend.Close()
}

func (self *proxyBackend) GetState(key StateKey) ([]byte, error) {
	return self.Backend.GetState(key)
}

func (self *proxyBackend) GetIdByName(name string) (string, error) {
	return self.Backend.GetIdByName(name)
}

func (self *proxyBackend) SetState(key StateKey, data []byte) error {
	return self.Backend.SetState(key, data)
}

func (self *proxyBackend) DeleteState(key StateKey) error {
	return self.Backend.DeleteState(key)
}

func (self *proxyBackend) SetNameToId(name, id string) error {
	return self.Backend.SetNameToId(name, id)
}
