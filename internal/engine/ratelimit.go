package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

const maxBurst = 1 << 20

// newBWLimiter returns a limiter admitting bytesPerSec, with a burst of one
// second's worth of bytes capped at 1 MiB.
func newBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := int(min(bytesPerSec, maxBurst))
	return rate.NewLimiter(rate.Limit(bytesPerSec), max(burst, 1))
}

// waitBytes blocks until lim admits n bytes. Requests larger than the
// burst are admitted in burst-sized steps.
func waitBytes(ctx context.Context, lim *rate.Limiter, n int) error {
	for n > 0 {
		step := min(n, lim.Burst())
		if err := lim.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// throttledReader charges every byte it returns against a limiter. The
// bytes are handed back even when the wait fails so the caller can still
// write what it already read.
type throttledReader struct {
	ctx context.Context
	src io.Reader
	lim *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)
	if n > 0 {
		if werr := waitBytes(t.ctx, t.lim, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
