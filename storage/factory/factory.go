/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 12:22:52 2018 mstenber
 * Last modified: Mon Oct 12 17:55:40 2026 mstenber
 * Edit time:     51 min
 *
 */

package factory

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fingon/go-actree/codec"
	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/storage/badger"
	"github.com/fingon/go-actree/storage/bolt"
	"github.com/fingon/go-actree/storage/cassandra"
	"github.com/fingon/go-actree/storage/file"
	"github.com/fingon/go-actree/storage/inmemory"
	"github.com/fingon/go-actree/storage/pebble"
	"github.com/fingon/go-actree/storage/redis"
)

type factoryCallback func() storage.Backend

var backendFactories = map[string]factoryCallback{
	"inmemory": func() storage.Backend {
		return inmemory.NewInMemoryBackend()
	},
	"badger": func() storage.Backend {
		return badger.NewBadgerBackend()
	},
	"bolt": func() storage.Backend {
		return bolt.NewBoltBackend()
	},
	"file": func() storage.Backend {
		return file.NewFileBackend()
	},
	"pebble": func() storage.Backend {
		return pebble.NewPebbleBackend()
	},
	"redis": func() storage.Backend {
		return redis.NewRedisBackend()
	},
	"cassandra": func() storage.Backend {
		return cassandra.NewCassandraBackend()
	},
}

var ErrUnknownBackend = errors.New("unknown backend")

const DefaultSalt = "asdf"

// List returns the names of the known backends, sorted.
func List() []string {
	keys := make([]string, 0, len(backendFactories))
	for k := range backendFactories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func New(name, dir string) (storage.Backend, error) {
	var config storage.BackendConfiguration
	config.Directory = dir
	return NewWithConfig(name, config)
}

// NewWithConfig creates and initializes the named backend. If the
// configuration has Codec set, the backend is wrapped with it.
func NewWithConfig(name string, config storage.BackendConfiguration) (storage.Backend, error) {
	mlog.Printf2("storage/factory/factory", "f.NewWithConfig %v %v", name, config.Directory)
	cb, ok := backendFactories[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", name)
	}
	be := cb()
	err := be.Init(config)
	if err != nil {
		return nil, errors.Wrapf(err, "%s backend", name)
	}
	if config.Codec != nil {
		be = storage.NewCodecBackend(be, config.Codec)
	}
	return be, nil
}

type StorageConfiguration struct {
	storage.BackendConfiguration
	BackendName    string
	Password, Salt string
	Iterations     int
}

// NewStorage returns backend with compression, and encryption if
// password is given.
func NewStorage(config StorageConfiguration) (storage.Backend, error) {
	mlog.Printf2("storage/factory/factory", "f.NewStorage")
	salt := config.Salt
	if salt == "" {
		salt = DefaultSalt
	}
	beconfig := config.BackendConfiguration
	c2 := &codec.CompressingCodec{}
	if config.Password != "" {
		mlog.Printf2("storage/factory/factory", " with encryption + compression")
		c1 := codec.EncryptingCodec{}.Init([]byte(config.Password), []byte(salt), config.Iterations)
		beconfig.Codec = codec.CodecChain{}.Init(c1, c2)
	} else {
		mlog.Printf2("storage/factory/factory", " only compression")
		beconfig.Codec = codec.CodecChain{}.Init(c2)
	}
	return NewWithConfig(config.BackendName, beconfig)
}
