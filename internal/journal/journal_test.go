package journal

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/safetrix/internal/task"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "data/safetrix.journal.db", DefaultPath("data/safetrix.db"))
	assert.Equal(t, "/var/tasks.journal.db", DefaultPath("/var/tasks"))
}

func TestJournal_OpenCreatesFile(t *testing.T) {
	j := openTestJournal(t)
	assert.FileExists(t, j.Path())
}

func TestJournal_RecordAndHistory(t *testing.T) {
	j := openTestJournal(t)
	started := time.Unix(1700000000, 123)

	require.NoError(t, j.Record(Entry{
		TaskID: 1, Src: "a", Dst: "b", Status: task.Paused,
		StartOffset: 0, EndOffset: 4096, Started: started, Duration: time.Second,
	}))
	require.NoError(t, j.Record(Entry{
		TaskID: 1, Src: "a", Dst: "b", Status: task.Completed,
		StartOffset: 4096, EndOffset: 10000, Started: started.Add(time.Minute), Duration: 2 * time.Second,
	}))
	require.NoError(t, j.Record(Entry{
		TaskID: 2, Src: "c", Dst: "d", Status: task.Error, Error: "SourceOpenError",
	}))

	all, err := j.History(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].TaskID, "newest first")
	assert.Equal(t, "SourceOpenError", all[0].Error)

	runs, err := j.History(1, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, task.Completed, runs[0].Status)
	assert.Equal(t, int64(5904), runs[0].Bytes())
	assert.Equal(t, 2*time.Second, runs[0].Duration)
	assert.True(t, runs[1].Started.Equal(started))

	limited, err := j.History(0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournal_BatchFlush(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < batchSize+5; i++ {
		require.NoError(t, j.Record(Entry{TaskID: i + 1, Src: fmt.Sprintf("src-%d", i), Status: task.Completed}))
	}
	// The first batch was written by Record itself.
	j.mu.Lock()
	pending := len(j.batch)
	j.mu.Unlock()
	assert.LessOrEqual(t, pending, 5)

	all, err := j.History(0, 0)
	require.NoError(t, err)
	assert.Len(t, all, batchSize+5)
}

func TestJournal_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(Entry{TaskID: 9, Status: task.Completed}))
	require.NoError(t, j.Close())
	require.Error(t, j.Record(Entry{TaskID: 10}))

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	runs, err := j.History(9, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
