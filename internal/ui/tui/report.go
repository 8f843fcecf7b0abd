package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/safetrix/internal/stats"
	"github.com/bamsammich/safetrix/internal/ui"
)

// saveModal is the one-line filename prompt shown after s.
type saveModal struct {
	active bool
	input  string
}

func (s *saveModal) open(name string) {
	s.active, s.input = true, name
}

func (s *saveModal) close() { s.active = false }

func (s *saveModal) edit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyBackspace:
		if r := []rune(s.input); len(r) > 0 {
			s.input = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		s.input = ""
	case tea.KeyRunes, tea.KeySpace:
		s.input += string(msg.Runes)
	}
}

func (s *saveModal) render() string {
	return "  " + styleSavePrompt.Render("Save to: ") + styleSaveInput.Render(s.input+"█")
}

// report renders the plain-text run summary written by the save modal.
func report(snap stats.Snapshot, finished []finishedEntry, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "safetrix transfer report (%s)\n\n", at.Format(time.DateTime))

	for _, row := range [][2]string{
		{"duration", ui.FormatDuration(snap.Elapsed)},
		{"completed", ui.FormatCount(snap.TasksCompleted)},
		{"paused", ui.FormatCount(snap.TasksPaused)},
		{"failed", ui.FormatCount(snap.TasksFailed)},
		{"size", ui.FormatBytes(snap.BytesCopied)},
		{"avg speed", ui.FormatRate(snap.AvgSpeed())},
	} {
		fmt.Fprintf(&b, "%-10s %s\n", row[0]+":", row[1])
	}

	if len(finished) == 0 {
		return b.String()
	}
	b.WriteString("\ntasks:\n")
	for _, e := range finished {
		var detail string
		switch e.outcome {
		case outcomeFailed:
			detail = "FAILED " + e.errMsg
		case outcomePaused:
			detail = "paused at " + ui.FormatBytes(e.bytes)
		default:
			detail = "done " + ui.FormatBytes(e.bytes)
		}
		fmt.Fprintf(&b, "  #%-4d %s  %s\n", e.id, e.path, detail)
	}
	return b.String()
}
