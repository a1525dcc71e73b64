/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 17:15:30 2017 mstenber
 * Last modified: Mon Oct 12 13:08:40 2026 mstenber
 * Edit time:     66 min
 *
 */

package codec

import (
	"crypto/rand"
	"fmt"
	"log"
	"testing"

	"github.com/stvp/assert"
)

const compressible = "123456789123456789123456789123456789123456789123456789123456789123456789123456789123456789123456789"

func ProdCodecOnce(text string, c Codec, t *testing.T) {
	p := []byte(text)
	enc, err := c.EncodeBytes(p, nil)
	assert.Nil(t, err)
	dec, err := c.DecodeBytes(enc, nil)
	assert.Nil(t, err)
	assert.Equal(t, string(p), string(dec))
}

func ProdCodec(c Codec, t *testing.T) {
	ProdCodecOnce("foo", c, t)
	ProdCodecOnce(compressible, c, t)
}

func TestEncryptingCodec(t *testing.T) {
	t.Parallel()
	p := []byte("data")
	ad := []byte("ad")

	c := EncryptingCodec{}.Init([]byte("foo"), []byte("salt"), 64)

	ProdCodec(c, t)

	enc, err := c.EncodeBytes(p, nil)
	assert.Nil(t, err)

	// Ensure we can't mess around with additional data
	_, err2 := c.DecodeBytes(enc, ad)
	assert.True(t, err2 != nil)

	// Ensure same payload does not encrypt the same way
	enc2, err := c.EncodeBytes(p, nil)
	assert.Nil(t, err)
	assert.NotEqual(t, string(enc), string(enc2))

	// But it still can be decrypted
	dec, err := c.DecodeBytes(enc2, nil)
	assert.Nil(t, err)
	assert.Equal(t, p, dec)

	enc3, err := c.EncodeBytes(p, ad)
	assert.Nil(t, err)
	dec, err = c.DecodeBytes(enc3, ad)
	assert.Nil(t, err)
	assert.Equal(t, p, dec)

	// Tampering with the ciphertext is detected
	enc3[len(enc3)-1] ^= 1
	_, err = c.DecodeBytes(enc3, ad)
	assert.True(t, err != nil)

	// As is the wrong password
	c2 := EncryptingCodec{}.Init([]byte("bar"), []byte("salt"), 64)
	_, err = c2.DecodeBytes(enc2, nil)
	assert.True(t, err != nil)
}

func TestCompressingCodec(t *testing.T) {
	t.Parallel()
	c := &CompressingCodec{}
	ProdCodec(c, t)

	p := []byte(compressible)
	enc, err := c.EncodeBytes(p, nil)
	assert.Nil(t, err)
	assert.True(t, len(enc) < len(compressible)/2)

	// Incompressible data costs only the envelope
	r := make([]byte, 256)
	_, err = rand.Read(r)
	assert.Nil(t, err)
	enc, err = c.EncodeBytes(r, nil)
	assert.Nil(t, err)
	assert.True(t, len(enc) < len(r)+8)

	_, err = c.DecodeBytes([]byte("garbage"), nil)
	assert.True(t, err != nil)
}

func TestNopCodecChain(t *testing.T) {
	t.Parallel()
	c := CodecChain{}.Init()
	ProdCodec(c, t)
}

func TestCodecChain(t *testing.T) {
	t.Parallel()
	c1 := EncryptingCodec{}.Init([]byte("foo"), []byte("salt"), 64)
	c2 := &CompressingCodec{}
	c := CodecChain{}.Init(c1, c2)
	ProdCodec(c, t)

	p := []byte(compressible)
	enc, err := c.EncodeBytes(p, nil)
	assert.Nil(t, err)
	assert.True(t, len(enc) < len(compressible))

	// Outermost layer is the encrypted one
	_, err = c2.DecodeBytes(enc, nil)
	assert.True(t, err != nil)
}

func BenchmarkCodec(b *testing.B) {
	runEncode := func(b *testing.B, c Codec, p []byte) {
		b.SetBytes(int64(len(p)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			enc, err := c.EncodeBytes(p, nil)
			if err != nil || enc == nil {
				log.Panic(err)
			}
		}
	}
	runDecode := func(b *testing.B, c Codec, p []byte) {
		b.SetBytes(int64(len(p)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := c.DecodeBytes(p, nil)
			if err != nil {
				log.Panic(err)
			}
		}
	}
	add := func(c Codec, prefix string) {
		p1 := make([]byte, 1024)
		_, err := rand.Read(p1)
		if err != nil {
			log.Panic(err)
		}
		p2 := make([]byte, 1024)
		for _, p := range []struct {
			name string
			data []byte
		}{{"Random", p1}, {"Zeros", p2}} {
			data := p.data
			b.Run(fmt.Sprintf("Encode-%s-%s", prefix, p.name), func(b *testing.B) {
				runEncode(b, c, data)
			})
			enc, _ := c.EncodeBytes(data, nil)
			b.Run(fmt.Sprintf("Decode-%s-%s", prefix, p.name), func(b *testing.B) {
				runDecode(b, c, enc)
			})
		}
	}
	c1 := EncryptingCodec{}.Init([]byte("foo"), []byte("salt"), 64)
	c2 := &CompressingCodec{}
	cc := CodecChain{}.Init(c1, c2)
	add(c1, "AES")
	add(c2, "Snappy")
	add(cc, "AES+Snappy")
}
