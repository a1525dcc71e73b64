/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Jan  6 00:13:13 2018 mstenber
 * Last modified: Mon Oct 12 13:55:02 2026 mstenber
 * Edit time:     19 min
 *
 */

package storage

import (
	"github.com/fingon/go-actree/codec"
	"github.com/fingon/go-actree/mlog"
	"github.com/pkg/errors"
)

// codecBackend transforms state with codec on its way to (and from)
// the wrapped backend. The state key is the additional data, so
// encrypted state cannot be moved to another key unnoticed.
type codecBackend struct {
	proxyBackend
	Codec codec.Codec
}

// NewCodecBackend wraps backend so that all state passes through c.
// The wrapped backend must already be initialized.
func NewCodecBackend(backend Backend, c codec.Codec) Backend {
	return &codecBackend{proxyBackend: proxyBackend{Backend: backend},
		Codec: c}
}

func (self *codecBackend) GetState(key StateKey) ([]byte, error) {
	data, err := self.Backend.GetState(key)
	if err != nil || data == nil {
		return data, err
	}
	b, err := self.Codec.DecodeBytes(data, key.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %v", key)
	}
	return b, nil
}

func (self *codecBackend) SetState(key StateKey, data []byte) error {
	b, err := self.Codec.EncodeBytes(data, key.Bytes())
	if err != nil {
		return errors.Wrapf(err, "encoding %v", key)
	}
	mlog.Printf2("storage/codecbackend", "cb.SetState %v %d->%d b", key, len(data), len(b))
	return self.Backend.SetState(key, b)
}
