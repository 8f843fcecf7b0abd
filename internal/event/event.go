// Package event defines how the transfer engine reports progress and
// failures: two optional callback shapes invoked synchronously from the
// transfer loop, plus an Event value for presenters that prefer a channel.
package event

import "time"

// ProgressFunc receives the task id, percent complete (0-100) and an
// approximate throughput in bytes per second.
type ProgressFunc func(taskID int, percent, speed float64)

// ErrorFunc receives the task id, a failure code and a human message.
type ErrorFunc func(taskID int, code Code, msg string)

// Code classifies a failure reported through an ErrorFunc.
type Code int

const (
	CodeOK               Code = 0
	CodeSourceOpen       Code = -1
	CodeDestOpen         Code = -2
	CodeSeek             Code = -3
	CodeRead             Code = -4
	CodeWrite            Code = -5
	CodeCapacityExceeded Code = -6
	CodeNotFound         Code = -7
	CodePersistence      Code = -8
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeSourceOpen:
		return "SourceOpenError"
	case CodeDestOpen:
		return "DestOpenError"
	case CodeSeek:
		return "SeekError"
	case CodeRead:
		return "ReadError"
	case CodeWrite:
		return "WriteError"
	case CodeCapacityExceeded:
		return "CapacityExceeded"
	case CodeNotFound:
		return "NotFound"
	case CodePersistence:
		return "PersistenceError"
	default:
		return "Unknown"
	}
}

// Type identifies the kind of event.
type Type int

const (
	TaskStarted Type = iota + 1
	TaskProgress
	TaskPaused
	TaskCompleted
	TaskFailed
)

var typeNames = [...]string{
	TaskStarted:   "TaskStarted",
	TaskProgress:  "TaskProgress",
	TaskPaused:    "TaskPaused",
	TaskCompleted: "TaskCompleted",
	TaskFailed:    "TaskFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single notification for presenters.
type Event struct {
	Type      Type
	Timestamp time.Time
	TaskID    int
	Path      string  // source path, set on TaskStarted
	Total     int64   // source size, set on TaskStarted
	Percent   float64 // 0-100
	Speed     float64 // bytes/sec
	Offset    int64   // resume offset on TaskStarted, final offset otherwise
	Code      Code
	Message   string
}

// Forward returns callbacks that translate engine notifications into events
// on ch. Intermediate progress is dropped when ch is full so a slow presenter
// cannot stall the transfer; the final 100% update and errors are always
// delivered.
func Forward(ch chan<- Event) (ProgressFunc, ErrorFunc) {
	progress := func(taskID int, percent, speed float64) {
		ev := Event{
			Type:      TaskProgress,
			Timestamp: time.Now(),
			TaskID:    taskID,
			Percent:   percent,
			Speed:     speed,
		}
		if percent >= 100 {
			ch <- ev
			return
		}
		select {
		case ch <- ev:
		default:
		}
	}
	onError := func(taskID int, code Code, msg string) {
		ch <- Event{
			Type:      TaskFailed,
			Timestamp: time.Now(),
			TaskID:    taskID,
			Code:      code,
			Message:   msg,
		}
	}
	return progress, onError
}
