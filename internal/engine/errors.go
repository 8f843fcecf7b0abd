package engine

import (
	"errors"
	"fmt"

	"github.com/bamsammich/safetrix/internal/event"
)

var (
	ErrSourceOpen = errors.New("cannot open source file")
	ErrDestOpen   = errors.New("cannot open destination file")
	ErrSeek       = errors.New("cannot seek to resume offset")
	ErrRead       = errors.New("read error on source file")
	ErrWrite      = errors.New("write error on destination file")
)

// TransferError describes why a Run failed. It matches both its Kind
// sentinel and the underlying cause with errors.Is.
type TransferError struct {
	TaskID int
	Code   event.Code
	Kind   error
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("task %d: %v: %v", e.TaskID, e.Kind, e.Err)
}

func (e *TransferError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
