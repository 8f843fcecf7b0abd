//go:build linux

package engine

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves size bytes for f with fallocate(2). KEEP_SIZE leaves
// the visible length alone, so the file size keeps tracking the resume
// offset and a paused destination is never longer than what was written.
func preallocate(f *os.File, size int64) error {
	//nolint:gosec // G115: fd values are small non-negative integers
	if err := unix.Fallocate(int(f.Fd()), unix.FALLOC_FL_KEEP_SIZE, 0, size); err != nil {
		return &os.PathError{Op: "fallocate", Path: f.Name(), Err: err}
	}
	return nil
}
