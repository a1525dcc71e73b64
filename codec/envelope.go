/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:42:58 2017 mstenber
 * Last modified: Mon Oct 12 12:40:02 2026 mstenber
 * Edit time:     17 min
 *
 */

package codec

import (
	"github.com/pkg/errors"
	ugorji "github.com/ugorji/go/codec"
)

// This is responsible for hiding (and compressing) bytes in plain
// sight, so to speak. Envelopes are msgpack encoded with positional
// (toarray) layout.

type EncryptedData struct {
	_struct bool `codec:",toarray"`

	// nonce used for AES GCM
	Nonce []byte

	// EncryptedData is AES GCM encrypted payload
	EncryptedData []byte
}

type CompressionType byte

const (
	CompressionType_UNSET CompressionType = iota

	// The data has not been compressed.
	CompressionType_PLAIN

	// The data is compressed with Snappy.
	CompressionType_SNAPPY
)

type CompressedData struct {
	_struct bool `codec:",toarray"`

	// CompressionType describes how the data has been compressed.
	CompressionType CompressionType

	// RawData is the raw data of the client (whatever it is)
	RawData []byte
}

var msgpackHandle ugorji.MsgpackHandle

func marshal(v interface{}) (ret []byte, err error) {
	err = ugorji.NewEncoderBytes(&ret, &msgpackHandle).Encode(v)
	return
}

func unmarshal(data []byte, v interface{}) error {
	err := ugorji.NewDecoderBytes(data, &msgpackHandle).Decode(v)
	if err != nil {
		return errors.Wrap(err, "envelope decode")
	}
	return nil
}
