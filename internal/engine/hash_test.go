package engine

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestHashFileDigest(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty file", func(t *testing.T) {
		got, err := HashFile(writeFile(t, dir, "empty", nil))
		require.NoError(t, err)
		assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", got)
	})

	t.Run("larger than the copy buffer", func(t *testing.T) {
		data := make([]byte, 100*1024+3)
		for i := range data {
			data[i] = byte(i * 7)
		}
		sum := blake3.Sum256(data)

		got, err := HashFile(writeFile(t, dir, "big", data))
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(sum[:]), got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := HashFile(filepath.Join(dir, "nope"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestVerifyFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "plain", []byte("resume me"))
	same := writeFile(t, dir, "same", []byte("resume me"))
	flipped := writeFile(t, dir, "flipped", []byte("resume mE"))

	res, err := VerifyFiles(plain, same)
	require.NoError(t, err)
	assert.True(t, res.Match())
	assert.Len(t, res.HashA, 64)

	res, err = VerifyFiles(plain, flipped)
	require.NoError(t, err)
	assert.False(t, res.Match())
	assert.NotEqual(t, res.HashA, res.HashB)

	_, err = VerifyFiles(plain, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
