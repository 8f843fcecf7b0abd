package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bamsammich/safetrix/internal/journal"
	"github.com/bamsammich/safetrix/internal/task"
)

// TaskTable renders tasks as a bordered table, one row per task.
func TaskTable(tasks []*task.Task, pal Palette) string {
	if len(tasks) == 0 {
		return "no tasks\n"
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		status := lipgloss.NewStyle().Foreground(pal.StatusColor(t.Status)).Render(t.Status.String())
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			status,
			taskProgress(t),
			strconv.Itoa(t.Priority),
			t.SrcPath,
			t.DstPath,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(pal.Muted)).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ID", "STATUS", "PROGRESS", "PRI", "SOURCE", "DESTINATION").
		Rows(rows...)
	return tbl.String() + "\n"
}

// HistoryTable renders journal entries in the order given.
func HistoryTable(entries []journal.Entry, pal Palette) string {
	if len(entries) == 0 {
		return "no runs recorded\n"
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		outcome := lipgloss.NewStyle().Foreground(pal.StatusColor(e.Status)).Render(e.Status.String())
		var speed float64
		if e.Duration > 0 {
			speed = float64(e.Bytes()) / e.Duration.Seconds()
		}
		rows = append(rows, []string{
			e.Started.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(e.TaskID),
			outcome,
			fmt.Sprintf("%s → %s", FormatBytes(e.StartOffset), FormatBytes(e.EndOffset)),
			FormatDuration(e.Duration),
			FormatRate(speed),
			e.Error,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(pal.Muted)).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("STARTED", "TASK", "RESULT", "OFFSET", "TIME", "SPEED", "ERROR").
		Rows(rows...)
	return tbl.String() + "\n"
}

// TaskDetail renders every persisted field of t, one per line.
func TaskDetail(t *task.Task, pal Palette) string {
	label := lipgloss.NewStyle().Foreground(pal.Muted)
	status := lipgloss.NewStyle().Foreground(pal.StatusColor(t.Status)).Bold(true)

	var b strings.Builder
	field := func(name, value string) {
		fmt.Fprintf(&b, "%s %s\n", label.Render(fmt.Sprintf("%-10s", name)), value)
	}
	field("id", strconv.Itoa(t.ID))
	field("status", status.Render(t.Status.String()))
	field("source", t.SrcPath)
	field("dest", t.DstPath)
	field("size", fmt.Sprintf("%s (%d bytes)", FormatBytes(t.TotalSize), t.TotalSize))
	field("offset", fmt.Sprintf("%s (%d bytes)", FormatBytes(t.CurrentOffset), t.CurrentOffset))
	field("progress", taskProgress(t))
	field("priority", strconv.Itoa(t.Priority))
	field("integrity", fmt.Sprintf("%08x", t.Integrity))
	return b.String()
}

func taskProgress(t *task.Task) string {
	if t.TotalSize <= 0 {
		return FormatBytes(t.CurrentOffset)
	}
	return FormatPercent(t.Percent())
}
