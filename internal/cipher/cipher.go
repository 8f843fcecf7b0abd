// Package cipher provides the seekable keystream used to obscure file
// contents during a transfer. It is a reversible XOR transform, not an
// authenticated or strong cipher.
package cipher

import (
	"crypto/cipher"
	"fmt"
)

// KeySize is the length of the expanded key in bytes.
const KeySize = 32

// Algorithm selects a keystream implementation.
type Algorithm int

const (
	XorKeystream Algorithm = iota
)

func (a Algorithm) String() string {
	switch a {
	case XorKeystream:
		return "xor-keystream"
	default:
		return "unknown"
	}
}

// Stream is a crypto/cipher.Stream whose position can be moved to an
// absolute byte offset. Applying the same stream twice at the same offsets
// restores the original bytes.
type Stream interface {
	cipher.Stream
	// Seek positions the keystream so the next byte processed is treated as
	// byte offset of the underlying file.
	Seek(offset int64)
}

// New constructs the keystream for alg keyed by password.
//
//nolint:ireturn // factory selects the implementation at construction time
func New(alg Algorithm, password string) (Stream, error) {
	switch alg {
	case XorKeystream:
		return NewXOR(password), nil
	default:
		return nil, fmt.Errorf("unsupported cipher algorithm %d", int(alg))
	}
}

// XORStream XORs data with a 32-byte key derived from a password, advancing
// one key byte per data byte.
type XORStream struct {
	key      [KeySize]byte
	keyIndex int
}

// NewXOR derives the key from password. An empty password selects the
// built-in default key.
func NewXOR(password string) *XORStream {
	return &XORStream{key: DeriveKey(password)}
}

// DeriveKey expands password to KeySize bytes: key[i] = pw[i%len(pw)] ^ i.
// The derivation is fixed; changing it breaks previously encrypted files.
func DeriveKey(password string) [KeySize]byte {
	var key [KeySize]byte
	if password == "" {
		for i := range key {
			key[i] = byte(0xAB + i)
		}
		return key
	}
	for i := range key {
		key[i] = password[i%len(password)] ^ byte(i)
	}
	return key
}

// XORKeyStream implements cipher.Stream. dst and src may overlap entirely.
func (s *XORStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("cipher: output smaller than input")
	}
	for i, b := range src {
		dst[i] = b ^ s.key[s.keyIndex]
		s.keyIndex = (s.keyIndex + 1) % KeySize
	}
}

// Seek moves the key cursor to offset mod KeySize.
func (s *XORStream) Seek(offset int64) {
	if offset < 0 {
		offset = 0
	}
	s.keyIndex = int(offset % KeySize)
}

// KeyIndex reports the current key cursor.
func (s *XORStream) KeyIndex() int { return s.keyIndex }
