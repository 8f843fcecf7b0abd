package tui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/safetrix/internal/stats"
	"github.com/bamsammich/safetrix/internal/ui"
)

// rateView focuses on the active transfer: big throughput number, a
// full-width bar and the session counters.
type rateView struct{}

func (rateView) view(width int, active *activeEntry, snap stats.Snapshot) string {
	width = max(width, 20)

	var b strings.Builder
	var speed, pct float64
	var total int64
	if active != nil {
		speed, pct, total = active.speed, active.percent, active.total
	}

	b.WriteString("  " + styleBigNumber.Render(ui.FormatRate(speed)))
	b.WriteString("\n\n")

	b.WriteString("  " + renderBar(pct/100, max(width-4, 10)))
	b.WriteString("\n\n")

	done := int64(pct / 100 * float64(total))
	eta := ui.EstimateETA(total, done, speed)
	b.WriteString(fmt.Sprintf("  %s   %s   %s\n\n",
		styleFileSpeed.Render(ui.FormatPercent(pct)),
		styleFileSize.Render(fmt.Sprintf("%s / %s", ui.FormatBytes(done), ui.FormatBytes(total))),
		styleFileSize.Render("eta "+ui.FormatETA(eta)),
	))

	b.WriteString("  " + styleDivider.Render("session") + "  ")
	b.WriteString(fmt.Sprintf("%s done  %s paused  %s failed  %s moved  avg %s\n",
		styleIconDone.Render(ui.FormatCount(snap.TasksCompleted)),
		styleIconPaused.Render(ui.FormatCount(snap.TasksPaused)),
		styleIconFailed.Render(ui.FormatCount(snap.TasksFailed)),
		ui.FormatBytes(snap.BytesCopied),
		ui.FormatRate(snap.AvgSpeed()),
	))
	return b.String()
}
