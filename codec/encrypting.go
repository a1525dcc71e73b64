/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:42:12 2017 mstenber
 * Last modified: Mon Oct 12 12:47:51 2026 mstenber
 * Edit time:     24 min
 *
 */

package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/fingon/go-actree/mlog"
	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const DefaultIterations = 12345

// EncryptingCodec
//
// AES GCM based encrypting/decrypting (+authenticating) Codec. The
// key is derived from password and salt with PBKDF2-SHA256.
type EncryptingCodec struct {
	gcm cipher.AEAD
	// Main key
	mk []byte
}

func (self EncryptingCodec) Init(password, salt []byte, iter int) *EncryptingCodec {
	if iter <= 0 {
		iter = DefaultIterations
	}
	self.mk = pbkdf2.Key(password, salt, iter, 32, sha256.New)
	block, err := aes.NewCipher(self.mk)
	if err != nil {
		mlog.Panicf("aes.NewCipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		mlog.Panicf("cipher.NewGCM: %v", err)
	}
	self.gcm = gcm
	return &self
}

func (self *EncryptingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	var ed EncryptedData
	err = unmarshal(data, &ed)
	if err != nil {
		return
	}
	if len(ed.Nonce) != self.gcm.NonceSize() {
		return nil, errors.Errorf("invalid nonce size %d", len(ed.Nonce))
	}
	ret, err = self.gcm.Open(nil, ed.Nonce, ed.EncryptedData, additionalData)
	if err != nil {
		return nil, errors.Wrap(err, "gcm.Open")
	}
	return
}

func (self *EncryptingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	nonce := make([]byte, self.gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return
	}
	ciphertext := self.gcm.Seal(nil, nonce, data, additionalData)
	return marshal(&EncryptedData{Nonce: nonce, EncryptedData: ciphertext})
}
