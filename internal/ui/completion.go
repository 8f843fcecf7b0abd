package ui

import (
	"fmt"

	"github.com/bamsammich/safetrix/internal/stats"
)

// CompletionSummary builds the final summary line from a snapshot.
// Format: done ✓  tasks 3  paused 0  size 2.1 GiB  avg 641.0 MiB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	icon := "✓"
	switch {
	case snap.TasksFailed > 0:
		icon = "✗"
	case snap.TasksPaused > 0:
		icon = "‖"
	}

	return fmt.Sprintf("done %s  tasks %s  paused %s  size %s  avg %s  time %s  errors %d",
		icon,
		FormatCount(snap.TasksCompleted),
		FormatCount(snap.TasksPaused),
		FormatBytes(snap.BytesCopied),
		FormatRate(snap.AvgSpeed()),
		FormatDuration(snap.Elapsed),
		snap.TasksFailed,
	)
}
