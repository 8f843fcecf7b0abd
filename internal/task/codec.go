package task

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic identifies a task store file ("SFTX").
const Magic uint32 = 0x53465458

// MaxPathLen is the longest path, in bytes, a record can hold.
const MaxPathLen = 255

var (
	errBadMagic = errors.New("bad magic")
	errBadCount = errors.New("negative task count")
	byteOrder   = binary.LittleEndian
)

// record is the fixed-layout on-disk form of a Task. Callbacks are not part
// of it.
type record struct {
	ID            int32
	SrcPath       [MaxPathLen + 1]byte
	DstPath       [MaxPathLen + 1]byte
	TotalSize     uint64
	CurrentOffset uint64
	Priority      int32
	Status        int32
	Integrity     uint32
}

func toRecord(t *Task) record {
	r := record{
		ID:            int32(t.ID), //nolint:gosec // G115: ids fit the 32-bit record field
		TotalSize:     uint64(max(t.TotalSize, 0)),
		CurrentOffset: uint64(max(t.CurrentOffset, 0)),
		Priority:      int32(t.Priority), //nolint:gosec // G115: informational hint
		Status:        int32(t.Status),
		Integrity:     t.Integrity,
	}
	copy(r.SrcPath[:MaxPathLen], t.SrcPath)
	copy(r.DstPath[:MaxPathLen], t.DstPath)
	return r
}

func (r *record) toTask() *Task {
	return &Task{
		ID:            int(r.ID),
		SrcPath:       cString(r.SrcPath[:]),
		DstPath:       cString(r.DstPath[:]),
		TotalSize:     int64(r.TotalSize),     //nolint:gosec // G115: written from int64
		CurrentOffset: int64(r.CurrentOffset), //nolint:gosec // G115: written from int64
		Priority:      int(r.Priority),
		Status:        Status(r.Status),
		Integrity:     r.Integrity,
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// encodeTasks writes the magic, the count and one record per task.
func encodeTasks(w io.Writer, tasks []*Task) error {
	if err := binary.Write(w, byteOrder, Magic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, byteOrder, int32(len(tasks))); err != nil { //nolint:gosec // G115: bounded by capacity
		return fmt.Errorf("write count: %w", err)
	}
	for _, t := range tasks {
		rec := toRecord(t)
		if err := binary.Write(w, byteOrder, &rec); err != nil {
			return fmt.Errorf("write task %d: %w", t.ID, err)
		}
	}
	return nil
}

// decodeTasks reads a store file. At most limit records are returned even
// if the header announces more. Any short read is an error.
func decodeTasks(r io.Reader, limit int) ([]*Task, error) {
	var magic uint32
	if err := binary.Read(r, byteOrder, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: %#x", errBadMagic, magic)
	}

	var count int32
	if err := binary.Read(r, byteOrder, &count); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	if count < 0 {
		return nil, errBadCount
	}
	n := min(int(count), limit)

	tasks := make([]*Task, 0, n)
	for i := 0; i < n; i++ {
		var rec record
		if err := binary.Read(r, byteOrder, &rec); err != nil {
			return nil, fmt.Errorf("read task %d: %w", i, err)
		}
		tasks = append(tasks, rec.toTask())
	}
	return tasks, nil
}
