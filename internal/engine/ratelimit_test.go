package engine

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewBWLimiterBurst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bps  int64
		want int
	}{
		{"slow limit", 8192, 8192},
		{"fast limit capped", 64 << 20, maxBurst},
		{"exactly 1MiB", maxBurst, maxBurst},
		{"tiny limit", 1, 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lim := newBWLimiter(tt.bps)
			assert.Equal(t, tt.want, lim.Burst())
			assert.Equal(t, rate.Limit(tt.bps), lim.Limit())
		})
	}
}

func TestWaitBytesLargerThanBurst(t *testing.T) {
	t.Parallel()

	// Burst of 100 with a 64 KiB request would fail a plain WaitN.
	lim := rate.NewLimiter(rate.Inf, 100)
	require.NoError(t, waitBytes(context.Background(), lim, 64<<10))
}

func TestThrottledReader(t *testing.T) {
	t.Parallel()

	t.Run("passes data through", func(t *testing.T) {
		t.Parallel()
		data := bytes.Repeat([]byte{0x5a}, 3*DefaultChunkSize+17)
		r := &throttledReader{
			ctx: context.Background(),
			src: bytes.NewReader(data),
			lim: newBWLimiter(64 << 20),
		}
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("slows reads to the limit", func(t *testing.T) {
		t.Parallel()
		// 12 KiB at 8 KiB/s with an 8 KiB burst needs at least 0.5s.
		data := make([]byte, 12<<10)
		r := &throttledReader{
			ctx: context.Background(),
			src: bytes.NewReader(data),
			lim: newBWLimiter(8 << 10),
		}
		start := time.Now()
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Len(t, got, len(data))
		assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	})

	t.Run("returns bytes and the context error once cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &throttledReader{
			ctx: ctx,
			src: bytes.NewReader(make([]byte, 1<<20)),
			lim: newBWLimiter(1024),
		}
		buf := make([]byte, DefaultChunkSize)
		n, err := r.Read(buf)
		assert.Equal(t, DefaultChunkSize, n)
		require.ErrorIs(t, err, context.Canceled)
	})
}
