package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyResult compares two files by digest.
type VerifyResult struct {
	HashA string
	HashB string
}

// Match reports whether both digests are equal.
func (v VerifyResult) Match() bool { return v.HashA == v.HashB }

// VerifyFiles hashes a and b. Use it to confirm that decrypting an
// encrypted destination reproduced the original source.
func VerifyFiles(a, b string) (VerifyResult, error) {
	ha, err := HashFile(a)
	if err != nil {
		return VerifyResult{}, err
	}
	hb, err := HashFile(b)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{HashA: ha, HashB: hb}, nil
}
