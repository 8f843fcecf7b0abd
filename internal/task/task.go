package task

import "github.com/bamsammich/safetrix/internal/event"

// Status is the lifecycle state of a Task.
type Status int32

const (
	Waiting Status = iota
	Running
	Paused
	Completed
	Error
)

var statusNames = [...]string{
	Waiting:   "waiting",
	Running:   "running",
	Paused:    "paused",
	Completed: "completed",
	Error:     "error",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Task is one source-to-destination transfer and its resume cursor.
type Task struct {
	ID            int
	SrcPath       string
	DstPath       string
	TotalSize     int64 // 0 when the source size could not be probed
	CurrentOffset int64 // bytes already transferred
	Priority      int   // informational only
	Status        Status
	Integrity     uint32 // reserved checksum slot, not filled by transfers

	// Runtime only, never persisted.
	OnProgress event.ProgressFunc
	OnError    event.ErrorFunc
}

// Percent returns CurrentOffset as a percentage of TotalSize, clamped to
// [0, 100], or 0 when the size is unknown.
func (t *Task) Percent() float64 {
	if t.TotalSize <= 0 {
		return 0
	}
	return min(max(float64(t.CurrentOffset)/float64(t.TotalSize)*100, 0), 100)
}

// Progress invokes OnProgress if set.
func (t *Task) Progress(percent, speed float64) {
	if t.OnProgress != nil {
		t.OnProgress(t.ID, percent, speed)
	}
}

// Fail invokes OnError if set.
func (t *Task) Fail(code event.Code, msg string) {
	if t.OnError != nil {
		t.OnError(t.ID, code, msg)
	}
}
