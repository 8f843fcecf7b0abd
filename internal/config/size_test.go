package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"0":       0,
		"4096":    4096,
		"100B":    100,
		"64K":     64 << 10,
		"64k":     64 << 10,
		"64KiB":   64 << 10,
		"10MB":    10 << 20,
		"1M":      1 << 20,
		"2 GiB":   2 << 30,
		"1T":      1 << 40,
		"1.5G":    1536 << 20,
		"0.5m":    512 << 10,
		" 2K ":    2048,
		"8388608": 8 << 20,
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := ParseSize(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseSizeErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"abc",
		"K",
		"KiB",
		"-5",
		"-1.5M",
		"notanumber G",
		"NaN",
		"9999999999T",
		"1e30G",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSize(input)
			assert.Error(t, err)
		})
	}
}
