package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
	"github.com/bamsammich/safetrix/internal/ui"
)

type viewMode int

const (
	viewFeed viewMode = iota
	viewRate
)

// Bubble Tea messages.
type engineEventMsg event.Event
type channelDoneMsg struct{}
type tickMsg time.Time
type saveResultMsg struct{ err error }

// readNextEvent returns a tea.Cmd that blocks on the event channel.
func readNextEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelDoneMsg{}
		}
		return engineEventMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the root Bubble Tea model.
type Model struct {
	events <-chan event.Event
	stats  *stats.Collector
	pause  func() // asks the engine to stop after the current chunk

	mode      viewMode
	feed      feedView
	rate      rateView
	width     int
	height    int
	statusMsg string
	done      bool // event channel closed
	quitting  bool
	pauseSent bool
	quitOnEnd bool // q pressed mid-transfer

	lastSnap stats.Snapshot
	save     saveModal
}

// NewModel creates a new TUI model. pause may be nil.
func NewModel(events <-chan event.Event, collector *stats.Collector, pause func()) Model {
	return Model{
		events: events,
		stats:  collector,
		pause:  pause,
		feed:   newFeedView(),
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		readNextEvent(m.events),
		tickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case engineEventMsg:
		m.feed.handleEvent(event.Event(msg))
		return m, readNextEvent(m.events)

	case channelDoneMsg:
		m.done = true
		m.lastSnap = m.snapshot()
		if m.quitOnEnd {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tickCmd()

	case tickMsg:
		m.lastSnap = m.snapshot()
		return m, tickCmd()

	case saveResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("save failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("saved to %s", m.save.input)
		}
		m.save.close()
		return m, nil
	}

	return m, nil
}

func (m Model) snapshot() stats.Snapshot {
	if m.stats == nil {
		return stats.Snapshot{}
	}
	return m.stats.Snapshot()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.save.active {
		return m.handleSaveKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.done {
			m.quitting = true
			return m, tea.Quit
		}
		m.requestPause()
		m.quitOnEnd = true
		m.statusMsg = "pausing, exiting once the transfer stops"
		return m, nil

	case "p":
		if m.done {
			return m, nil
		}
		m.requestPause()
		m.statusMsg = "pause requested"
		return m, nil

	case "r":
		m.mode = viewRate
		return m, nil

	case "f":
		m.mode = viewFeed
		return m, nil

	case "j", "down":
		m.feed.scrollDown()
		return m, nil

	case "k", "up":
		m.feed.scrollUp()
		return m, nil

	case "G":
		m.feed.scrollToBottom()
		return m, nil

	case "g":
		m.feed.scrollToTop()
		return m, nil

	case "s":
		if m.done {
			m.save.open(fmt.Sprintf("safetrix-%s.log", time.Now().Format("2006-01-02-150405")))
			m.statusMsg = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) requestPause() {
	if m.pauseSent || m.pause == nil {
		return
	}
	m.pause()
	m.pauseSent = true
}

func (m Model) handleSaveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.save.close()
		m.statusMsg = ""
	case tea.KeyEnter:
		return m, m.writeReport(m.save.input)
	default:
		m.save.edit(msg)
	}
	return m, nil
}

func (m Model) writeReport(path string) tea.Cmd {
	body := report(m.lastSnap, m.feed.finished, time.Now())
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(body), 0o644) //nolint:gosec // user-chosen path for report output
		return saveResultMsg{err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	contentHeight := max(m.height-3, 3) // header, status and footer lines

	switch m.mode {
	case viewFeed:
		b.WriteString(m.feed.view(m.width, contentHeight))
	case viewRate:
		b.WriteString(m.rate.view(m.width, m.feed.active, m.lastSnap))
	}

	switch {
	case m.save.active:
		b.WriteString(m.save.render())
	case m.statusMsg != "":
		b.WriteString(styleStatus.Render("  " + m.statusMsg))
	}
	b.WriteByte('\n')

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	snap := m.lastSnap
	label := styleHeaderLabel.Render("safetrix")

	if m.done {
		return styleHeader.Render(fmt.Sprintf("  %s  %s  %s",
			label, styleIconDone.Render("done"), ui.CompletionSummary(snap)))
	}

	var pct float64
	var id int
	if a := m.feed.active; a != nil {
		pct, id = a.percent, a.id
	}
	return styleHeader.Render(fmt.Sprintf("  %s  task #%d  %s  %s  moved %s  %s",
		label,
		id,
		ui.FormatPercent(pct),
		renderBar(pct/100, 10),
		ui.FormatBytes(snap.BytesCopied),
		ui.FormatDuration(snap.Elapsed),
	))
}

func (m Model) renderFooter() string {
	type keybind struct {
		key   string
		label string
	}

	binds := []keybind{
		{"p", "pause"},
		{"q", "pause+quit"},
		{"r", "rate"},
		{"f", "feed"},
		{"j/k", "scroll"},
	}
	if m.done {
		binds = []keybind{
			{"s", "save"},
			{"j/k", "scroll"},
			{"r", "rate"},
			{"f", "feed"},
			{"q", "quit"},
		}
	}

	parts := make([]string, 0, len(binds))
	for _, kb := range binds {
		parts = append(parts, styleKeybindKey.Render(kb.key)+" "+styleKeybindLabel.Render(kb.label))
	}
	return "  " + strings.Join(parts, "   ")
}
