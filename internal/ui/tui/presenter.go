package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/safetrix/internal/config"
	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
	"github.com/bamsammich/safetrix/internal/ui"
)

// Config configures the TUI presenter.
type Config struct {
	Stats *stats.Collector
	Theme config.ThemeConfig
	// Pause is invoked when the user presses p or q mid-transfer.
	Pause func()
}

// Presenter wraps a Bubble Tea program and implements ui.Presenter.
type Presenter struct {
	cfg Config
}

// NewPresenter creates a new TUI presenter.
func NewPresenter(cfg Config) *Presenter {
	ApplyTheme(cfg.Theme)
	return &Presenter{cfg: cfg}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (p *Presenter) Run(events <-chan event.Event) error {
	prog := tea.NewProgram(
		NewModel(events, p.cfg.Stats, p.cfg.Pause),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)
	_, err := prog.Run()
	return err
}

// Summary returns the final completion summary line.
func (p *Presenter) Summary() string {
	if p.cfg.Stats == nil {
		return ""
	}
	return ui.CompletionSummary(p.cfg.Stats.Snapshot())
}
