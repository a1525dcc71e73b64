/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 11:14:11 2018 mstenber
 * Last modified: Mon Oct 12 13:40:11 2026 mstenber
 * Edit time:     31 min
 *
 */

// storage package provides the persistence layer for actor state.
//
// Every actor checkpoints its state as an opaque byte slice keyed by
// (group, id); in addition, a flat name -> id mapping is kept so that
// well-known actors (e.g. named trees) can be located after restart.
package storage

import (
	"fmt"

	"github.com/fingon/go-actree/codec"
	"github.com/pkg/errors"
)

// StateKey identifies state of single actor.
type StateKey struct {
	Group, Id string
}

func (self StateKey) String() string {
	return fmt.Sprintf("%s/%s", self.Group, self.Id)
}

// Bytes is the canonical byte encoding of the key. It is used both
// as the key within flat key-value stores and as the additional data
// authenticated by codecs.
func (self StateKey) Bytes() []byte {
	return []byte(self.String())
}

type BackendConfiguration struct {
	// Directory is used by the embedded backends
	Directory string

	// Address is used by the network backends (host:port; comma
	// separated list for cassandra)
	Address string

	// Namespace is key prefix (redis) or keyspace (cassandra)
	Namespace string

	// Codec, if set, is applied to the state by the factory
	Codec codec.Codec
}

var ErrNoDirectory = errors.New("directory not configured")
var ErrNoAddress = errors.New("address not configured")

// Backend is the shadow behind the throne; it actually handles the
// low-level operations of state. It provides an API that returns
// results that are consistent with the previous calls. How it does
// this in practise is left as an exercise to the implementor.
type Backend interface {
	// Init makes the backend usable (opens databases, connects).
	Init(config BackendConfiguration) error

	// Close the backend
	Close() error

	// Getters

	// GetState returns the state stored for key, or nil if there
	// is none.
	GetState(key StateKey) ([]byte, error)

	// GetIdByName returns id mapped to particular name ("" if none).
	GetIdByName(name string) (string, error)

	// Setters

	// SetState replaces the state stored for key.
	SetState(key StateKey, data []byte) error

	// DeleteState removes state of key; absent state is not an error.
	DeleteState(key StateKey) error

	// SetNameToId sets the logical name to map to particular
	// id. Empty id removes the mapping.
	SetNameToId(name, id string) error
}
