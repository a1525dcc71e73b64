/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:42:12 2017 mstenber
 * Last modified: Mon Oct 12 12:55:18 2026 mstenber
 * Edit time:     21 min
 *
 */

package codec

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// CompressingCodec
//
// On-the-fly compressing Codec. If the result does not improve, the
// result is marked to be plaintext and passed as-is.
type CompressingCodec struct {
}

func (self *CompressingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	var cd CompressedData
	err = unmarshal(data, &cd)
	if err != nil {
		return
	}
	switch cd.CompressionType {
	case CompressionType_PLAIN:
		ret = cd.RawData
	case CompressionType_SNAPPY:
		ret, err = snappy.Decode(nil, cd.RawData)
		if err != nil {
			err = errors.Wrap(err, "snappy.Decode")
		}
	default:
		err = errors.Errorf("unknown compression type %d", cd.CompressionType)
	}
	return
}

func (self *CompressingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	cd := CompressedData{CompressionType: CompressionType_SNAPPY,
		RawData: snappy.Encode(nil, data)}
	if len(cd.RawData) >= len(data) {
		cd.CompressionType = CompressionType_PLAIN
		cd.RawData = data
	}
	return marshal(&cd)
}
