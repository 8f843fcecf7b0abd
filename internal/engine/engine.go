// Package engine runs resumable, keystream-encrypted file transfers.
//
// A transfer reads the source in fixed chunks starting at the task's
// CurrentOffset, XORs each chunk with a keystream positioned at the same
// offset, writes it to the destination at that offset and advances the
// cursor. The task store is rewritten every SyncThreshold bytes, so a crash
// loses at most that much progress.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/bamsammich/safetrix/internal/cipher"
	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/stats"
	"github.com/bamsammich/safetrix/internal/task"
)

const (
	DefaultChunkSize     = 4096
	DefaultSyncThreshold = 64 * 1024
	DefaultPassword      = "SecretKey123"
)

// Config describes how transfers are performed.
type Config struct {
	Password      string
	Algorithm     cipher.Algorithm
	ChunkSize     int
	SyncThreshold int64
	BWLimit       int64 // bytes/sec, 0 = unlimited
	Preallocate   bool
	Stats         *stats.Collector // optional session totals
	Logger        *slog.Logger
}

// Result is the outcome of one Run.
type Result struct {
	Status       task.Status
	BytesWritten int64
	Err          error
}

// Engine drives transfers for tasks owned by a Store. One Run at a time is
// expected; RequestPause may be called from any goroutine.
type Engine struct {
	store   *task.Store
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
	pause   atomic.Bool
}

// New validates cfg, fills defaults and returns an Engine bound to store.
func New(store *task.Store, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, errors.New("engine requires a task store")
	}
	if _, err := cipher.New(cfg.Algorithm, cfg.Password); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.SyncThreshold <= 0 {
		cfg.SyncThreshold = DefaultSyncThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{store: store, cfg: cfg, logger: cfg.Logger}
	if cfg.BWLimit > 0 {
		e.limiter = newBWLimiter(cfg.BWLimit)
	}
	return e, nil
}

// RequestPause asks the running transfer to stop after the current chunk.
// The request is cleared when Run returns.
func (e *Engine) RequestPause() {
	e.pause.Store(true)
}

func (e *Engine) pauseRequested(ctx context.Context) bool {
	return e.pause.Load() || ctx.Err() != nil
}

// Run transfers t from its CurrentOffset to the end of the source. It
// blocks until the transfer completes, fails or is paused. A pause is
// requested with RequestPause or by cancelling ctx; both are checked once
// per chunk and yield a Paused result with a nil error.
//
// Every failure is terminal for the run: the task is marked Error, the
// store is synced, OnError fires and Result.Err holds a *TransferError.
func (e *Engine) Run(ctx context.Context, t *task.Task) Result {
	defer e.pause.Store(false)
	if t == nil {
		return Result{Status: task.Error, Err: errors.New("nil task")}
	}

	stream, err := cipher.New(e.cfg.Algorithm, e.cfg.Password)
	if err != nil {
		return Result{Status: t.Status, Err: err}
	}

	log := e.logger.With("task", t.ID)
	log.Debug("starting transfer",
		"src", t.SrcPath,
		"dst", t.DstPath,
		"offset", t.CurrentOffset,
		"total", t.TotalSize,
	)

	src, err := os.Open(t.SrcPath)
	if err != nil {
		return e.fail(t, event.CodeSourceOpen, ErrSourceOpen, err, 0)
	}
	defer src.Close()

	dst, created, err := openDest(t.DstPath)
	if err != nil {
		return e.fail(t, event.CodeDestOpen, ErrDestOpen, err, 0)
	}
	defer dst.Close()

	if err := seekBoth(src, dst, t.CurrentOffset); err != nil {
		return e.fail(t, event.CodeSeek, ErrSeek, err, 0)
	}

	// The source may have grown since Add recorded its size. An unknown
	// size stays unknown.
	if info, err := src.Stat(); err == nil && t.TotalSize > 0 && info.Size() > t.TotalSize {
		log.Debug("source grew", "recorded", t.TotalSize, "size", info.Size())
		t.TotalSize = info.Size()
	}

	if created && e.cfg.Preallocate && t.TotalSize > 0 {
		// Advisory; many filesystems refuse it.
		if err := preallocate(dst, t.TotalSize); err != nil {
			log.Debug("preallocation skipped", "error", err)
		}
	}

	stream.Seek(t.CurrentOffset)

	t.Status = task.Running
	e.store.MarkDirty(t)

	var r io.Reader = src
	if e.limiter != nil {
		r = &throttledReader{ctx: ctx, src: src, lim: e.limiter}
	}

	buf := make([]byte, e.cfg.ChunkSize)
	meter := stats.NewMeter()
	var sinceSync int64

	for {
		if e.pauseRequested(ctx) {
			return e.pauseRun(log, t, dst, meter)
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			stream.XORKeyStream(chunk, chunk)

			w, werr := dst.Write(chunk)
			if werr == nil && w < n {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return e.fail(t, event.CodeWrite, ErrWrite, werr, meter.Bytes())
			}

			t.CurrentOffset += int64(w)
			if t.TotalSize > 0 {
				t.TotalSize = max(t.TotalSize, t.CurrentOffset)
			}
			meter.Add(int64(w))
			if e.cfg.Stats != nil {
				e.cfg.Stats.AddBytesCopied(int64(w))
			}
			e.store.MarkDirty(t)

			sinceSync += int64(w)
			if sinceSync >= e.cfg.SyncThreshold {
				// Destination bytes must be durable before the offset that covers them.
				if serr := dst.Sync(); serr != nil {
					return e.fail(t, event.CodeWrite, ErrWrite, fmt.Errorf("sync destination: %w", serr), meter.Bytes())
				}
				_ = e.store.Sync() //nolint:errcheck // logged by the store
				sinceSync = 0
			}

			t.Progress(t.Percent(), meter.Rate())
		}

		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return e.pauseRun(log, t, dst, meter)
			}
			return e.fail(t, event.CodeRead, ErrRead, rerr, meter.Bytes())
		}
	}

	// Drop stale bytes left by an older, longer destination.
	if err := dst.Truncate(t.CurrentOffset); err != nil {
		return e.fail(t, event.CodeWrite, ErrWrite, fmt.Errorf("truncate destination: %w", err), meter.Bytes())
	}
	if err := dst.Sync(); err != nil {
		return e.fail(t, event.CodeWrite, ErrWrite, fmt.Errorf("sync destination: %w", err), meter.Bytes())
	}

	t.Status = task.Completed
	e.store.MarkDirty(t)
	_ = e.store.Sync() //nolint:errcheck // logged by the store
	if e.cfg.Stats != nil {
		e.cfg.Stats.AddTasksCompleted(1)
	}
	t.Progress(100, meter.Rate())

	log.Debug("transfer completed", "offset", t.CurrentOffset, "bytes", meter.Bytes())
	return Result{Status: task.Completed, BytesWritten: meter.Bytes()}
}

func (e *Engine) pauseRun(log *slog.Logger, t *task.Task, dst *os.File, meter *stats.Meter) Result {
	if err := dst.Sync(); err != nil {
		log.Warn("sync destination on pause", "error", err)
	}
	t.Status = task.Paused
	e.store.MarkDirty(t)
	_ = e.store.Sync() //nolint:errcheck // logged by the store
	if e.cfg.Stats != nil {
		e.cfg.Stats.AddTasksPaused(1)
	}
	log.Info("transfer paused", "offset", t.CurrentOffset)
	return Result{Status: task.Paused, BytesWritten: meter.Bytes()}
}

func (e *Engine) fail(t *task.Task, code event.Code, kind, cause error, written int64) Result {
	terr := &TransferError{TaskID: t.ID, Code: code, Kind: kind, Err: cause}

	t.Status = task.Error
	e.store.MarkDirty(t)
	_ = e.store.Sync() //nolint:errcheck // logged by the store
	if e.cfg.Stats != nil {
		e.cfg.Stats.AddTasksFailed(1)
	}
	t.Fail(code, fmt.Sprintf("%v: %v", kind, cause))

	e.logger.Warn("transfer failed", "task", t.ID, "code", code.String(), "error", cause)
	return Result{Status: task.Error, BytesWritten: written, Err: terr}
}

// openDest opens an existing destination for update, or creates it along
// with any missing parent directories. created reports which happened.
func openDest(path string) (f *os.File, created bool, err error) {
	f, err = os.OpenFile(path, os.O_RDWR, 0)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
		return nil, false, fmt.Errorf("create parent dir: %w", mkErr)
	}
	f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}

// seekBoth positions src and dst at offset. A destination shorter than
// offset would leave a zero-filled gap, so it is rejected.
func seekBoth(src, dst *os.File, offset int64) error {
	if offset < 0 {
		return fmt.Errorf("negative offset %d", offset)
	}
	info, err := dst.Stat()
	if err != nil {
		return fmt.Errorf("stat destination: %w", err)
	}
	if info.Size() < offset {
		return fmt.Errorf("destination has %d bytes, resume offset is %d", info.Size(), offset)
	}
	if _, err := src.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek source: %w", err)
	}
	if _, err := dst.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek destination: %w", err)
	}
	return nil
}
