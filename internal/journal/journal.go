// Package journal keeps a SQLite history of transfer runs next to the task
// store. The task store only knows where each task stands now; the journal
// records how it got there: one row per engine run with the offsets it
// moved between and how it ended.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bamsammich/safetrix/internal/task"
)

const batchSize = 32

// Entry is one engine run of one task.
type Entry struct {
	TaskID      int
	Src         string
	Dst         string
	Status      task.Status // Completed, Paused or Error
	StartOffset int64
	EndOffset   int64
	Started     time.Time
	Duration    time.Duration
	Error       string
}

// Bytes returns how far the run advanced the task.
func (e Entry) Bytes() int64 { return e.EndOffset - e.StartOffset }

// Journal is safe for concurrent use. Records are buffered and written in
// batches; History flushes first so reads always see every record.
type Journal struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	batch   []Entry
	done    chan struct{}
	stopped bool
}

// DefaultPath returns the journal location for a task store file:
// data/safetrix.db becomes data/safetrix.journal.db.
func DefaultPath(storePath string) string {
	ext := filepath.Ext(storePath)
	return strings.TrimSuffix(storePath, ext) + ".journal.db"
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	j := &Journal{
		db:   db,
		path: path,
		done: make(chan struct{}),
	}
	if err := j.init(); err != nil {
		db.Close()
		return nil, err
	}

	go j.flushLoop()
	return j, nil
}

func (j *Journal) init() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id      INTEGER NOT NULL,
			src          TEXT NOT NULL,
			dst          TEXT NOT NULL,
			status       INTEGER NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset   INTEGER NOT NULL,
			started      INTEGER NOT NULL,
			duration     INTEGER NOT NULL,
			error        TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS runs_task ON runs (task_id);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Record queues e for writing.
func (j *Journal) Record(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stopped {
		return errors.New("journal closed")
	}

	j.batch = append(j.batch, e)
	if len(j.batch) >= batchSize {
		return j.flushLocked()
	}
	return nil
}

// Flush writes any pending records to the database.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushLocked()
}

func (j *Journal) flushLocked() error {
	if len(j.batch) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO runs
		(task_id, src, dst, status, start_offset, end_offset, started, duration, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range j.batch {
		if _, err := stmt.Exec(
			e.TaskID, e.Src, e.Dst, int32(e.Status),
			e.StartOffset, e.EndOffset,
			e.Started.UnixNano(), int64(e.Duration), e.Error,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert run of task %d: %w", e.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	j.batch = j.batch[:0]
	return nil
}

func (j *Journal) flushLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.mu.Lock()
			_ = j.flushLocked() //nolint:errcheck // retried on the next tick and on Close
			j.mu.Unlock()
		}
	}
}

// History returns the newest runs first, at most limit of them (0 means
// no limit). taskID 0 selects every task.
func (j *Journal) History(taskID, limit int) ([]Entry, error) {
	if err := j.Flush(); err != nil {
		return nil, err
	}

	query := `SELECT task_id, src, dst, status, start_offset, end_offset, started, duration, error
		FROM runs`
	var args []any
	if taskID > 0 {
		query += " WHERE task_id = ?"
		args = append(args, taskID)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			status   int32
			started  int64
			duration int64
		)
		if err := rows.Scan(
			&e.TaskID, &e.Src, &e.Dst, &status,
			&e.StartOffset, &e.EndOffset, &started, &duration, &e.Error,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Status = task.Status(status)
		e.Started = time.Unix(0, started)
		e.Duration = time.Duration(duration)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close flushes any pending records and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if !j.stopped {
		j.stopped = true
		close(j.done)
	}
	flushErr := j.flushLocked()
	j.mu.Unlock()
	return errors.Join(flushErr, j.db.Close())
}

// Path returns the path to the journal database file.
func (j *Journal) Path() string {
	return j.path
}
