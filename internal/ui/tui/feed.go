package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/ui"
)

type activeEntry struct {
	id      int
	path    string
	total   int64
	offset  int64 // resume offset
	percent float64
	speed   float64
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomePaused
	outcomeFailed
)

type finishedEntry struct {
	id      int
	path    string
	outcome outcome
	bytes   int64
	percent float64
	speed   float64
	errMsg  string
}

type feedView struct {
	active       *activeEntry
	names        map[int]string
	finished     []finishedEntry
	scrollOffset int  // viewport offset into finished list
	autoScroll   bool // follow new entries
}

func newFeedView() feedView {
	return feedView{
		names:      make(map[int]string),
		autoScroll: true,
	}
}

func (f *feedView) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.TaskStarted:
		f.names[ev.TaskID] = ev.Path
		var pct float64
		if ev.Total > 0 {
			pct = float64(ev.Offset) / float64(ev.Total) * 100
		}
		f.active = &activeEntry{
			id:      ev.TaskID,
			path:    ev.Path,
			total:   ev.Total,
			offset:  ev.Offset,
			percent: pct,
		}

	case event.TaskProgress:
		if f.active != nil && f.active.id == ev.TaskID {
			f.active.percent = ev.Percent
			f.active.speed = ev.Speed
		}

	case event.TaskCompleted:
		f.finish(finishedEntry{
			id:      ev.TaskID,
			outcome: outcomeDone,
			bytes:   ev.Offset,
			percent: 100,
			speed:   ev.Speed,
		})

	case event.TaskPaused:
		f.finish(finishedEntry{
			id:      ev.TaskID,
			outcome: outcomePaused,
			bytes:   ev.Offset,
			percent: ev.Percent,
		})

	case event.TaskFailed:
		f.finish(finishedEntry{
			id:      ev.TaskID,
			outcome: outcomeFailed,
			errMsg:  fmt.Sprintf("%s: %s", ev.Code, ev.Message),
		})
	}
}

func (f *feedView) finish(e finishedEntry) {
	e.path = f.names[e.id]
	if f.active != nil && f.active.id == e.id {
		if e.speed == 0 {
			e.speed = f.active.speed
		}
		f.active = nil
	}
	f.finished = append(f.finished, e)
}

// scrollDown moves the viewport down one line and disables autoScroll.
func (f *feedView) scrollDown() {
	f.autoScroll = false
	f.scrollOffset++
}

// scrollUp moves the viewport up one line and disables autoScroll.
func (f *feedView) scrollUp() {
	f.autoScroll = false
	if f.scrollOffset > 0 {
		f.scrollOffset--
	}
}

func (f *feedView) scrollToTop() {
	f.autoScroll = false
	f.scrollOffset = 0
}

func (f *feedView) scrollToBottom() {
	f.autoScroll = true
}

func (f *feedView) view(width, height int) string {
	width = max(width, 20)

	var b strings.Builder
	rows := height
	if f.active != nil {
		b.WriteString(styleDivider.Render("─ transferring"))
		b.WriteByte('\n')
		b.WriteString(f.renderActive(width))
		rows -= 2
	}
	if len(f.finished) == 0 {
		return b.String()
	}
	rows = max(rows-1, 1)

	maxOffset := max(len(f.finished)-rows, 0)
	if f.autoScroll {
		f.scrollOffset = maxOffset
	}
	f.scrollOffset = min(max(f.scrollOffset, 0), maxOffset)

	b.WriteString(styleDivider.Render(fmt.Sprintf("─ finished (%d)", len(f.finished))))
	b.WriteByte('\n')
	end := min(f.scrollOffset+rows, len(f.finished))
	for _, e := range f.finished[f.scrollOffset:end] {
		b.WriteString(renderFinished(e))
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *feedView) renderActive(width int) string {
	e := f.active
	text := fmt.Sprintf("%s  %s  %s",
		ui.FormatPercent(e.percent),
		styleFileSpeed.Render(ui.FormatRate(e.speed)),
		styleFileSize.Render(ui.FormatBytes(e.total)),
	)
	barWidth := min(max(width-lipgloss.Width(e.path)-40, 10), 30)
	return fmt.Sprintf("  %s  #%d %s  %s  %s\n",
		styleActive.Render("⟩"),
		e.id,
		styleFilePath.Render(e.path),
		renderBar(e.percent/100, barWidth),
		text,
	)
}

func renderFinished(e finishedEntry) string {
	prefix := fmt.Sprintf("#%d %s", e.id, styleFilePath.Render(e.path))
	switch e.outcome {
	case outcomeFailed:
		return fmt.Sprintf("  %s  %s  %s", styleIconFailed.Render("✗"), prefix, styleError.Render(e.errMsg))
	case outcomePaused:
		return fmt.Sprintf("  %s  %s  %s",
			styleIconPaused.Render("‖"), prefix,
			styleFileSize.Render(fmt.Sprintf("paused at %s (%s)", ui.FormatBytes(e.bytes), ui.FormatPercent(e.percent))))
	default:
		line := fmt.Sprintf("  %s  %s  %s", styleIconDone.Render("✓"), prefix,
			styleFileSize.Render(fmt.Sprintf("%10s", ui.FormatBytes(e.bytes))))
		if e.speed > 0 {
			line += "  " + styleFileSpeed.Render(ui.FormatRate(e.speed))
		}
		return line
	}
}

func renderBar(pct float64, width int) string {
	bar := ui.ProgressBar(pct, width)
	filled := strings.Count(bar, "▪")
	return styleProgressFilled.Render(strings.Repeat("▪", filled)) +
		styleProgressEmpty.Render(strings.Repeat("□", width-filled))
}
