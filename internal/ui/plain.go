package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
)

// plainPresenter writes one line per task state change to w and throttled
// progress to errW. On a terminal the progress line is redrawn in place.
type plainPresenter struct {
	w        io.Writer
	errW     io.Writer
	stats    *stats.Collector
	inline   bool
	width    int
	interval time.Duration
	now      func() time.Time

	names    map[int]string
	totals   map[int]int64
	lastDraw time.Time
	drawn    bool // an inline progress line is on screen
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	p.clearLine()
	return nil
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	if p.names == nil {
		p.names = make(map[int]string)
		p.totals = make(map[int]int64)
	}
	name := p.names[ev.TaskID]

	switch ev.Type {
	case event.TaskStarted:
		p.names[ev.TaskID] = ev.Path
		p.totals[ev.TaskID] = ev.Total
		p.clearLine()
		if ev.Offset > 0 {
			fmt.Fprintf(p.w, "task %d  resume  %s  at %s of %s\n",
				ev.TaskID, ev.Path, FormatBytes(ev.Offset), FormatBytes(ev.Total))
		} else {
			fmt.Fprintf(p.w, "task %d  start  %s  %s\n", ev.TaskID, ev.Path, FormatBytes(ev.Total))
		}

	case event.TaskProgress:
		if ev.Percent >= 100 {
			return
		}
		now := p.now()
		if now.Sub(p.lastDraw) < p.interval {
			return
		}
		p.lastDraw = now
		p.printProgress(ev)

	case event.TaskCompleted:
		p.clearLine()
		fmt.Fprintf(p.w, "task %d  done  %s  %s  %s\n",
			ev.TaskID, name, FormatBytes(ev.Offset), FormatRate(ev.Speed))

	case event.TaskPaused:
		p.clearLine()
		fmt.Fprintf(p.w, "task %d  paused  %s  at %s (%s)\n",
			ev.TaskID, name, FormatBytes(ev.Offset), FormatPercent(ev.Percent))

	case event.TaskFailed:
		p.clearLine()
		fmt.Fprintf(p.w, "task %d  failed  %s  %s: %s\n", ev.TaskID, name, ev.Code, ev.Message)
	}
}

func (p *plainPresenter) printProgress(ev event.Event) {
	total := p.totals[ev.TaskID]
	done := int64(ev.Percent / 100 * float64(total))
	eta := EstimateETA(total, done, ev.Speed)

	if !p.inline {
		fmt.Fprintf(p.errW, "progress: task %d %s %s/%s %s eta %s\n",
			ev.TaskID, FormatPercent(ev.Percent),
			FormatBytes(done), FormatBytes(total),
			FormatRate(ev.Speed), FormatETA(eta),
		)
		return
	}

	text := fmt.Sprintf("task %d  %6s  %s  eta %s",
		ev.TaskID, FormatPercent(ev.Percent), FormatRate(ev.Speed), FormatETA(eta))
	barWidth := min(p.width-len(text)-4, 40)
	line := "  " + text
	if barWidth >= 10 {
		line = ProgressBar(ev.Percent/100, barWidth) + "  " + text
	}
	fmt.Fprintf(p.errW, "\r%s\x1b[K", line)
	p.drawn = true
}

func (p *plainPresenter) clearLine() {
	if !p.drawn {
		return
	}
	fmt.Fprint(p.errW, "\r\x1b[K")
	p.drawn = false
}

func (p *plainPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	return CompletionSummary(p.stats.Snapshot())
}
