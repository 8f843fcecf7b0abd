package ui

import (
	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
)

// quietPresenter drains events without output. Failures still reach the
// user through the logger.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan event.Event) error {
	for range events { //nolint:revive // drain
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
