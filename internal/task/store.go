// Package task holds the transfer task registry and its crash-recovery file.
package task

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bamsammich/safetrix/internal/event"
)

// DefaultMaxTasks is the store capacity when none is configured.
const DefaultMaxTasks = 128

var (
	ErrCapacityExceeded = errors.New("task store is full")
	ErrNotFound         = errors.New("task not found")
	ErrInvalidInput     = errors.New("invalid task input")
)

// Store is the in-memory task registry, mirrored to a binary file on every
// Sync. Tasks are handed out by pointer; the store owns the canonical copy.
//
// The engine mutates a running task's offset and status without holding the
// store lock, so Sync must not run concurrently with an active transfer on
// another goroutine.
type Store struct {
	path     string
	maxTasks int
	logger   *slog.Logger

	mu     sync.Mutex
	tasks  []*Task
	dirty  map[int]bool
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTasks sets the capacity. Values below 1 are ignored.
func WithMaxTasks(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxTasks = n
		}
	}
}

// WithLogger sets the logger used for soft persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open creates a store backed by path and loads any tasks already saved
// there. A missing, truncated or foreign file yields an empty store.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		maxTasks: DefaultMaxTasks,
		logger:   slog.Default(),
		dirty:    make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	s.tasks = nil
	defer s.recalculateNextID()

	f, err := os.Open(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("open task store, starting empty", "path", s.path, "error", err)
		}
		return
	}
	defer f.Close()

	tasks, err := decodeTasks(bufio.NewReader(f), s.maxTasks)
	if err != nil {
		s.logger.Warn("task store unreadable, starting empty", "path", s.path, "error", err)
		return
	}
	s.tasks = tasks
}

func (s *Store) recalculateNextID() {
	maxID := 0
	for _, t := range s.tasks {
		maxID = max(maxID, t.ID)
	}
	s.nextID = maxID + 1
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Cap returns the maximum number of tasks.
func (s *Store) Cap() int { return s.maxTasks }

// Add registers a new Waiting task and persists the store. The source size
// is probed best-effort; an unreadable source gets TotalSize 0.
func (s *Store) Add(src, dst string, priority int) (int, error) {
	if src == "" || dst == "" {
		return 0, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	if len(src) > MaxPathLen || len(dst) > MaxPathLen {
		return 0, fmt.Errorf("%w: path longer than %d bytes", ErrInvalidInput, MaxPathLen)
	}

	s.mu.Lock()
	if len(s.tasks) >= s.maxTasks {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w (%d tasks)", ErrCapacityExceeded, s.maxTasks)
	}

	t := &Task{
		ID:       s.nextID,
		SrcPath:  src,
		DstPath:  dst,
		Priority: priority,
		Status:   Waiting,
	}
	if info, err := os.Stat(src); err == nil && info.Mode().IsRegular() {
		t.TotalSize = info.Size()
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	_ = s.Sync() //nolint:errcheck // persistence failures are logged, not returned
	return t.ID, nil
}

// Get returns the live task with id.
func (s *Store) Get(id int) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// List returns the live tasks in insertion order. The slice is a fresh
// copy; the tasks it points to are not.
func (s *Store) List() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// SetCallbacks attaches runtime callbacks to a task. Either may be nil.
func (s *Store) SetCallbacks(id int, onProgress event.ProgressFunc, onError event.ErrorFunc) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	t.OnProgress = onProgress
	t.OnError = onError
	return nil
}

// MarkDirty flags t as changed since the last Sync. Tasks not owned by the
// store are ignored.
func (s *Store) MarkDirty(t *Task) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, owned := range s.tasks {
		if owned == t {
			s.dirty[t.ID] = true
			return
		}
	}
}

// IsDirty reports whether the task with id has unsynced changes.
func (s *Store) IsDirty(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty[id]
}

// Flush syncs only if some task is dirty.
func (s *Store) Flush() error {
	s.mu.Lock()
	pending := len(s.dirty) > 0
	s.mu.Unlock()
	if !pending {
		return nil
	}
	return s.Sync()
}

// Sync rewrites the backing file with every task. The file is replaced
// atomically. Failures are logged and returned; callers are free to ignore
// them.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(); err != nil {
		s.logger.Error("sync task store", "path", s.path, "error", err)
		return err
	}
	clear(s.dirty)
	return nil
}

func (s *Store) writeLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmpName := fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.New().String()[:8])
	tmpPath := filepath.Join(dir, tmpName)
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := encodeTasks(w, s.tasks); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush store: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync store: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
