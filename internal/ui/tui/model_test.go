package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
)

func newTestModel() (Model, *stats.Collector, *int) {
	ch := make(chan event.Event, 10)
	c := stats.NewCollector()
	pauses := new(int)
	return NewModel(ch, c, func() { *pauses++ }), c, pauses
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	model, ok := updated.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_Init(t *testing.T) {
	m, _, _ := newTestModel()
	assert.NotNil(t, m.Init())
}

func TestModel_KeyP_RequestsPauseOnce(t *testing.T) {
	m, _, pauses := newTestModel()

	m, cmd := press(t, m, "p")
	assert.Nil(t, cmd)
	assert.Equal(t, 1, *pauses)
	assert.Contains(t, m.statusMsg, "pause requested")
	assert.False(t, m.quitting)

	m, _ = press(t, m, "p")
	assert.Equal(t, 1, *pauses)
}

func TestModel_KeyQ_MidTransferPausesThenQuits(t *testing.T) {
	m, _, pauses := newTestModel()

	m, cmd := press(t, m, "q")
	assert.Nil(t, cmd)
	assert.Equal(t, 1, *pauses)
	assert.True(t, m.quitOnEnd)
	assert.False(t, m.quitting)

	updated, cmd := m.Update(channelDoneMsg{})
	model, ok := updated.(Model)
	require.True(t, ok)
	assert.True(t, model.quitting)
	assert.NotNil(t, cmd) // tea.Quit
}

func TestModel_KeyQ_AfterDoneQuits(t *testing.T) {
	m, _, pauses := newTestModel()
	m.done = true

	m, cmd := press(t, m, "q")
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.Zero(t, *pauses)
}

func TestModel_NilPauseFunc(t *testing.T) {
	m := NewModel(make(chan event.Event), nil, nil)
	m, _ = press(t, m, "p")
	assert.False(t, m.pauseSent)
	assert.Zero(t, m.snapshot().BytesCopied)
}

func TestModel_ViewSwitch(t *testing.T) {
	m, _, _ := newTestModel()
	m, _ = press(t, m, "r")
	assert.Equal(t, viewRate, m.mode)
	m, _ = press(t, m, "f")
	assert.Equal(t, viewFeed, m.mode)
}

func TestModel_WindowResize(t *testing.T) {
	m, _, _ := newTestModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, ok := updated.(Model)
	require.True(t, ok)
	assert.Equal(t, 120, model.width)
	assert.Equal(t, 40, model.height)
}

func TestModel_EngineEvents(t *testing.T) {
	m, _, _ := newTestModel()

	updated, cmd := m.Update(engineEventMsg(event.Event{
		Type: event.TaskStarted, TaskID: 4, Path: "/in/a.bin", Total: 1000, Offset: 250,
	}))
	model, ok := updated.(Model)
	require.True(t, ok)
	assert.NotNil(t, cmd)
	require.NotNil(t, model.feed.active)
	assert.InDelta(t, 25.0, model.feed.active.percent, 0.001)

	updated, _ = model.Update(engineEventMsg(event.Event{
		Type: event.TaskProgress, TaskID: 4, Percent: 60, Speed: 2048,
	}))
	model, ok = updated.(Model)
	require.True(t, ok)
	assert.InDelta(t, 60.0, model.feed.active.percent, 0.001)

	updated, _ = model.Update(engineEventMsg(event.Event{
		Type: event.TaskCompleted, TaskID: 4, Offset: 1000,
	}))
	model, ok = updated.(Model)
	require.True(t, ok)
	assert.Nil(t, model.feed.active)
	require.Len(t, model.feed.finished, 1)
	assert.Equal(t, "/in/a.bin", model.feed.finished[0].path)
	assert.InDelta(t, 2048.0, model.feed.finished[0].speed, 0.001, "speed carried from last progress")
}

func TestModel_ChannelDone_StaysOpen(t *testing.T) {
	m, _, _ := newTestModel()
	updated, cmd := m.Update(channelDoneMsg{})
	model, ok := updated.(Model)
	require.True(t, ok)
	assert.True(t, model.done)
	assert.False(t, model.quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Tick(t *testing.T) {
	m, c, _ := newTestModel()
	c.AddTasksCompleted(5)
	c.AddBytesCopied(1024 * 1024)

	updated, cmd := m.Update(tickMsg(time.Now()))
	model, ok := updated.(Model)
	require.True(t, ok)
	assert.Equal(t, int64(5), model.lastSnap.TasksCompleted)
	assert.NotNil(t, cmd)
}

func TestModel_Views(t *testing.T) {
	m, _, _ := newTestModel()
	m.feed.handleEvent(event.Event{Type: event.TaskStarted, TaskID: 1, Path: "a.bin", Total: 100})
	m.width, m.height = 100, 30

	out := m.View()
	assert.Contains(t, out, "safetrix")
	assert.Contains(t, out, "a.bin")
	assert.Contains(t, out, "pause")

	m.mode = viewRate
	out = m.View()
	assert.Contains(t, out, "session")
	assert.Contains(t, out, "eta")

	m.quitting = true
	assert.Empty(t, m.View())
}

func TestModel_ScrollKeys(t *testing.T) {
	m, _, _ := newTestModel()
	for i := 0; i < 10; i++ {
		m.feed.handleEvent(event.Event{Type: event.TaskCompleted, TaskID: i + 1, Offset: 100})
	}

	m, _ = press(t, m, "j")
	assert.False(t, m.feed.autoScroll)

	m, _ = press(t, m, "G")
	assert.True(t, m.feed.autoScroll)

	m, _ = press(t, m, "g")
	assert.Equal(t, 0, m.feed.scrollOffset)
	assert.False(t, m.feed.autoScroll)
}

func TestModel_SaveModal_ActivatesOnlyWhenDone(t *testing.T) {
	m, _, _ := newTestModel()

	m, _ = press(t, m, "s")
	assert.False(t, m.save.active)

	m.done = true
	m, _ = press(t, m, "s")
	assert.True(t, m.save.active)
	assert.Contains(t, m.save.input, "safetrix-")
	assert.Contains(t, m.save.input, ".log")
}

func TestModel_SaveModal_Editing(t *testing.T) {
	m, _, _ := newTestModel()
	m.save.active = true

	m, _ = press(t, m, "abc")
	assert.Equal(t, "abc", m.save.input)
	assert.Contains(t, m.save.render(), "abc")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, ok := updated.(Model)
	require.True(t, ok)
	assert.Equal(t, "ab", m.save.input)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m, ok = updated.(Model)
	require.True(t, ok)
	assert.False(t, m.save.active)
}

func TestModel_WriteReport(t *testing.T) {
	m, c, _ := newTestModel()
	c.AddTasksCompleted(1)
	c.AddTasksFailed(1)
	m.done = true
	m.lastSnap = c.Snapshot()

	m.feed.handleEvent(event.Event{Type: event.TaskStarted, TaskID: 1, Path: "/in/ok.bin", Total: 1024})
	m.feed.handleEvent(event.Event{Type: event.TaskCompleted, TaskID: 1, Offset: 1024})
	m.feed.handleEvent(event.Event{Type: event.TaskStarted, TaskID: 2, Path: "/in/gone.bin"})
	m.feed.handleEvent(event.Event{Type: event.TaskFailed, TaskID: 2, Code: event.CodeSourceOpen, Message: "no such file"})

	path := filepath.Join(t.TempDir(), "report.log")
	msg := m.writeReport(path)()
	result, ok := msg.(saveResultMsg)
	require.True(t, ok)
	require.NoError(t, result.err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "safetrix transfer report")
	assert.Contains(t, string(content), "/in/ok.bin")
	assert.Contains(t, string(content), "SourceOpenError: no such file")
	assert.Contains(t, string(content), "failed:    1")
}

func TestModel_FooterChangesWhenDone(t *testing.T) {
	m, _, _ := newTestModel()
	assert.Contains(t, m.renderFooter(), "pause")

	m.done = true
	footer := m.renderFooter()
	assert.Contains(t, footer, "save")
	assert.NotContains(t, footer, "pause")
}

func TestReport(t *testing.T) {
	snap := stats.Snapshot{TasksCompleted: 1, TasksPaused: 1, BytesCopied: 3072, Elapsed: 3 * time.Second}
	finished := []finishedEntry{
		{id: 4, path: "/in/a.bin", outcome: outcomeDone, bytes: 2048},
		{id: 9, path: "/in/b.bin", outcome: outcomePaused, bytes: 1024},
	}

	got := report(snap, finished, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, `safetrix transfer report (2026-03-01 12:00:00)

duration:  3s
completed: 1
paused:    1
failed:    0
size:      3.0 KiB
avg speed: 1.0 KiB/s

tasks:
  #4    /in/a.bin  done 2.0 KiB
  #9    /in/b.bin  paused at 1.0 KiB
`, got)
}
