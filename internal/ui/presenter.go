package ui

import (
	"io"
	"time"

	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
)

// Presenter consumes transfer events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     *stats.Collector
	IsTTY     bool
	Quiet     bool
	// Width is the terminal width used to size the inline progress bar.
	Width int
	// Interval throttles progress output; 0 picks a default per mode.
	Interval time.Duration
}

// NewPresenter creates the line-oriented presenter matching cfg. The
// full-screen presenter lives in the tui package.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
		if cfg.IsTTY {
			interval = 100 * time.Millisecond
		}
	}
	return &plainPresenter{
		w:        cfg.Writer,
		errW:     cfg.ErrWriter,
		stats:    cfg.Stats,
		inline:   cfg.IsTTY,
		width:    cfg.Width,
		interval: interval,
		now:      time.Now,
	}
}
