package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/safetrix/internal/config"
	"github.com/bamsammich/safetrix/internal/task"
)

// Palette is the set of colors shared by the task table and the TUI.
type Palette struct {
	Green  lipgloss.Color
	Blue   lipgloss.Color
	Yellow lipgloss.Color
	Red    lipgloss.Color
	Muted  lipgloss.Color
	Bright lipgloss.Color
}

// DefaultPalette returns the Catppuccin Mocha colors.
func DefaultPalette() Palette {
	return Palette{
		Green:  lipgloss.Color("#a6e3a1"),
		Blue:   lipgloss.Color("#89b4fa"),
		Yellow: lipgloss.Color("#f9e2af"),
		Red:    lipgloss.Color("#f38ba8"),
		Muted:  lipgloss.Color("#5a6278"),
		Bright: lipgloss.Color("#cdd6f4"),
	}
}

// WithTheme returns p with any colors set in tc overridden.
func (p Palette) WithTheme(tc config.ThemeConfig) Palette {
	override := func(dst *lipgloss.Color, v *string) {
		if v != nil {
			*dst = lipgloss.Color(*v)
		}
	}
	override(&p.Green, tc.Green)
	override(&p.Blue, tc.Blue)
	override(&p.Yellow, tc.Yellow)
	override(&p.Red, tc.Red)
	override(&p.Muted, tc.Muted)
	override(&p.Bright, tc.Bright)
	return p
}

// StatusColor maps a task status to its display color.
func (p Palette) StatusColor(s task.Status) lipgloss.Color {
	switch s {
	case task.Running:
		return p.Blue
	case task.Paused:
		return p.Yellow
	case task.Completed:
		return p.Green
	case task.Error:
		return p.Red
	default:
		return p.Muted
	}
}
