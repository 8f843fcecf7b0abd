package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/safetrix/internal/config"
	"github.com/bamsammich/safetrix/internal/ui"
)

// palette is mutable so config can override it.
var palette = ui.DefaultPalette()

// Pre-built styles, rebuilt by rebuildStyles() after color changes.
var (
	styleHeader         lipgloss.Style
	styleHeaderLabel    lipgloss.Style
	styleDivider        lipgloss.Style
	styleIconDone       lipgloss.Style
	styleIconFailed     lipgloss.Style
	styleIconPaused     lipgloss.Style
	styleFilePath       lipgloss.Style
	styleFileSize       lipgloss.Style
	styleFileSpeed      lipgloss.Style
	styleActive         lipgloss.Style
	styleError          lipgloss.Style
	styleKeybindKey     lipgloss.Style
	styleKeybindLabel   lipgloss.Style
	styleBigNumber      lipgloss.Style
	styleProgressFilled lipgloss.Style
	styleProgressEmpty  lipgloss.Style
	styleStatus         lipgloss.Style
	styleSavePrompt     lipgloss.Style
	styleSaveInput      lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	p := palette
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(p.Bright)
	styleHeaderLabel = lipgloss.NewStyle().Bold(true).Foreground(p.Blue)
	styleDivider = lipgloss.NewStyle().Foreground(p.Muted)
	styleIconDone = lipgloss.NewStyle().Foreground(p.Green)
	styleIconFailed = lipgloss.NewStyle().Foreground(p.Red)
	styleIconPaused = lipgloss.NewStyle().Foreground(p.Yellow)
	styleFilePath = lipgloss.NewStyle().Foreground(p.Bright)
	styleFileSize = lipgloss.NewStyle().Foreground(p.Muted)
	styleFileSpeed = lipgloss.NewStyle().Foreground(p.Blue)
	styleActive = lipgloss.NewStyle().Foreground(p.Blue)
	styleError = lipgloss.NewStyle().Foreground(p.Red)
	styleKeybindKey = lipgloss.NewStyle().Foreground(p.Blue).Bold(true)
	styleKeybindLabel = lipgloss.NewStyle().Foreground(p.Muted)
	styleBigNumber = lipgloss.NewStyle().Bold(true).Foreground(p.Green)
	styleProgressFilled = lipgloss.NewStyle().Foreground(p.Green)
	styleProgressEmpty = lipgloss.NewStyle().Foreground(p.Muted)
	styleStatus = lipgloss.NewStyle().Foreground(p.Yellow).Italic(true)
	styleSavePrompt = lipgloss.NewStyle().Foreground(p.Muted)
	styleSaveInput = lipgloss.NewStyle().Foreground(p.Bright)
}

// ApplyTheme overrides colors from a config ThemeConfig and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	palette = ui.DefaultPalette().WithTheme(tc)
	rebuildStyles()
}
