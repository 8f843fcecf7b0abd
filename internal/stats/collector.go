package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks session-wide transfer totals using atomic counters so a
// presenter can read them while a transfer is running.
type Collector struct {
	tasksCompleted atomic.Int64
	tasksPaused    atomic.Int64
	tasksFailed    atomic.Int64
	bytesCopied    atomic.Int64
	startTime      time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	TasksCompleted int64
	TasksPaused    int64
	TasksFailed    int64
	BytesCopied    int64
	Elapsed        time.Duration
}

func (c *Collector) AddTasksCompleted(n int64) { c.tasksCompleted.Add(n) }
func (c *Collector) AddTasksPaused(n int64)    { c.tasksPaused.Add(n) }
func (c *Collector) AddTasksFailed(n int64)    { c.tasksFailed.Add(n) }
func (c *Collector) AddBytesCopied(n int64)    { c.bytesCopied.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TasksCompleted: c.tasksCompleted.Load(),
		TasksPaused:    c.tasksPaused.Load(),
		TasksFailed:    c.tasksFailed.Load(),
		BytesCopied:    c.bytesCopied.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// AvgSpeed returns bytes/sec over the whole session.
func (s Snapshot) AvgSpeed() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.BytesCopied) / s.Elapsed.Seconds()
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"completed=%d paused=%d failed=%d bytes=%d",
		s.TasksCompleted, s.TasksPaused, s.TasksFailed, s.BytesCopied,
	)
}

// Meter estimates throughput for a single transfer run. It is not safe for
// concurrent use.
type Meter struct {
	start time.Time
	bytes int64
	now   func() time.Time
}

// NewMeter starts a meter at the current time.
func NewMeter() *Meter {
	return newMeterWithClock(time.Now)
}

func newMeterWithClock(now func() time.Time) *Meter {
	return &Meter{start: now(), now: now}
}

// Add records n transferred bytes.
func (m *Meter) Add(n int64) { m.bytes += n }

// Bytes returns the bytes recorded so far.
func (m *Meter) Bytes() int64 { return m.bytes }

// Rate returns the average bytes/sec since the meter started, or 0 before
// any measurable time has passed.
func (m *Meter) Rate() float64 {
	elapsed := m.now().Sub(m.start)
	if elapsed <= 0 || m.bytes == 0 {
		return 0
	}
	return float64(m.bytes) / elapsed.Seconds()
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
