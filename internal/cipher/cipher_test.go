package cipher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	t.Run("password expands with position mix", func(t *testing.T) {
		t.Parallel()
		key := DeriveKey("abc")
		assert.Equal(t, byte('a'^0), key[0])
		assert.Equal(t, byte('b'^1), key[1])
		assert.Equal(t, byte('c'^2), key[2])
		assert.Equal(t, byte('a'^3), key[3])
		assert.Equal(t, byte('c'^31), key[31])
	})

	t.Run("empty password uses default key", func(t *testing.T) {
		t.Parallel()
		key := DeriveKey("")
		assert.Equal(t, byte(0xAB), key[0])
		assert.Equal(t, byte(0xAB+31), key[31])
	})

	t.Run("password longer than key is truncated", func(t *testing.T) {
		t.Parallel()
		long := string(bytes.Repeat([]byte("x"), 40)) + "tail"
		key := DeriveKey(long)
		for i := range key {
			assert.Equal(t, byte('x')^byte(i), key[i])
		}
	})
}

func TestXORStream_RoundTrip(t *testing.T) {
	t.Parallel()

	plain := make([]byte, 10_000)
	for i := range plain {
		plain[i] = byte(i % 256)
	}

	buf := append([]byte(nil), plain...)
	NewXOR("SecretKey123").XORKeyStream(buf, buf)
	assert.NotEqual(t, plain, buf)

	NewXOR("SecretKey123").XORKeyStream(buf, buf)
	assert.Equal(t, plain, buf)
}

func TestXORStream_WrongPasswordDoesNotRestore(t *testing.T) {
	t.Parallel()

	plain := []byte("the quick brown fox jumps over the lazy dog")
	buf := append([]byte(nil), plain...)
	NewXOR("right").XORKeyStream(buf, buf)
	NewXOR("wrong").XORKeyStream(buf, buf)
	assert.NotEqual(t, plain, buf)
}

func TestXORStream_SeekMatchesContinuousStream(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("0123456789abcdef"), 300)

	whole := append([]byte(nil), data...)
	NewXOR("pw").XORKeyStream(whole, whole)

	for _, split := range []int{1, 7, 31, 32, 33, 100, 4095, 4096, len(data) - 1} {
		first := append([]byte(nil), data[:split]...)
		NewXOR("pw").XORKeyStream(first, first)

		second := append([]byte(nil), data[split:]...)
		s := NewXOR("pw")
		s.Seek(int64(split))
		s.XORKeyStream(second, second)

		assert.Equal(t, whole, append(first, second...), "split at %d", split)
	}
}

func TestXORStream_Seek(t *testing.T) {
	t.Parallel()

	s := NewXOR("pw")
	s.Seek(65)
	assert.Equal(t, 1, s.KeyIndex())
	s.Seek(0)
	assert.Equal(t, 0, s.KeyIndex())
	s.Seek(-5)
	assert.Equal(t, 0, s.KeyIndex())
}

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := New(XorKeystream, "pw")
	require.NoError(t, err)
	assert.IsType(t, &XORStream{}, s)
	assert.Equal(t, "xor-keystream", XorKeystream.String())

	_, err = New(Algorithm(99), "pw")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Algorithm(99).String())
}
