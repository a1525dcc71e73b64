/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2026 Markus Stenberg
 *
 * Created:       Mon Oct 12 16:10:44 2026 mstenber
 * Last modified: Mon Oct 12 16:38:02 2026 mstenber
 * Edit time:     27 min
 *
 */

package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/fingon/go-actree/mlog"
	"github.com/fingon/go-actree/storage"
	"github.com/fingon/go-actree/util"
)

const DefaultNamespace = "actree"

// DefaultTimeout bounds every single redis round trip.
var DefaultTimeout = 5 * time.Second

// redisBackend stores state in a redis server.
//
// - <namespace>/s/<group>/<id> -> state
// - <namespace>/n/<name> -> id
type redisBackend struct {
	storage.BackendConfiguration
	client *redis.Client
}

var _ storage.Backend = &redisBackend{}

func NewRedisBackend() storage.Backend {
	return &redisBackend{}
}

func (self *redisBackend) Init(config storage.BackendConfiguration) error {
	if config.Address == "" {
		return storage.ErrNoAddress
	}
	config.Namespace = util.SOr(config.Namespace, DefaultNamespace)
	self.BackendConfiguration = config
	self.client = redis.NewClient(&redis.Options{Addr: config.Address})
	ctx, cancel := self.context()
	defer cancel()
	if _, err := self.client.Ping(ctx).Result(); err != nil {
		self.client.Close()
		return errors.Wrapf(err, "redis ping %v", config.Address)
	}
	return nil
}

func (self *redisBackend) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}

func (self *redisBackend) stateKey(key storage.StateKey) string {
	return self.Namespace + "/s/" + key.String()
}

func (self *redisBackend) nameKey(name string) string {
	return self.Namespace + "/n/" + name
}

func (self *redisBackend) Close() error {
	return self.client.Close()
}

func (self *redisBackend) get(k string) ([]byte, error) {
	ctx, cancel := self.context()
	defer cancel()
	v, err := self.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return v, err
}

func (self *redisBackend) set(k string, v []byte) error {
	ctx, cancel := self.context()
	defer cancel()
	return self.client.Set(ctx, k, v, 0).Err()
}

func (self *redisBackend) del(k string) error {
	ctx, cancel := self.context()
	defer cancel()
	return self.client.Del(ctx, k).Err()
}

func (self *redisBackend) GetState(key storage.StateKey) ([]byte, error) {
	v, err := self.get(self.stateKey(key))
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %v", key)
	}
	return v, nil
}

func (self *redisBackend) GetIdByName(name string) (string, error) {
	v, err := self.get(self.nameKey(name))
	if err != nil {
		return "", errors.Wrapf(err, "redis get name %v", name)
	}
	return string(v), nil
}

func (self *redisBackend) SetState(key storage.StateKey, data []byte) error {
	mlog.Printf2("storage/redis/redis", "rb.SetState %v (%d b)", key, len(data))
	return self.set(self.stateKey(key), data)
}

func (self *redisBackend) DeleteState(key storage.StateKey) error {
	mlog.Printf2("storage/redis/redis", "rb.DeleteState %v", key)
	return self.del(self.stateKey(key))
}

func (self *redisBackend) SetNameToId(name, id string) error {
	if id == "" {
		return self.del(self.nameKey(name))
	}
	return self.set(self.nameKey(name), []byte(id))
}
