package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/safetrix/internal/cipher"
	"github.com/bamsammich/safetrix/internal/engine"
	"github.com/bamsammich/safetrix/internal/event"
	"github.com/bamsammich/safetrix/internal/journal"
	"github.com/bamsammich/safetrix/internal/stats"
	"github.com/bamsammich/safetrix/internal/task"
	"github.com/bamsammich/safetrix/internal/ui"
	"github.com/bamsammich/safetrix/internal/ui/tui"
)

type runOptions struct {
	all           bool
	useTUI        bool
	password      string
	askPassword   bool
	chunkSize     int64
	syncThreshold int64
	bwLimit       int64
	preallocate   bool
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [id...]",
		Short: "Run tasks one after another; Ctrl-C pauses",
		Long: "Run the given tasks in order, resuming each from its saved offset.\n" +
			"Ctrl-C (or p in the TUI) pauses the running task after the current chunk\n" +
			"and stops the run. Exit status is 1 when a task was paused and 2 when\n" +
			"any task failed.",
		Args: func(cmd *cobra.Command, args []string) error {
			if ro.all {
				if len(args) > 0 {
					return errors.New("--all does not take task ids")
				}
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, args, opts, ro)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&ro.all, "all", false, "run every task that is not completed, in id order")
	f.BoolVar(&ro.useTUI, "tui", false, "full-screen progress view (Bubble Tea)")
	f.StringVar(&ro.password, "password", engine.DefaultPassword, "keystream password")
	f.BoolVar(&ro.askPassword, "ask-password", false, "read the password from the terminal")
	f.Var(newSizeFlag(&ro.chunkSize, engine.DefaultChunkSize), "chunk-size", "bytes per read/write (e.g. 4K, 1M)")
	f.Var(newSizeFlag(&ro.syncThreshold, engine.DefaultSyncThreshold), "sync-threshold",
		"rewrite the task store after this many bytes")
	f.Var(newSizeFlag(&ro.bwLimit, 0), "bwlimit", "bandwidth limit (e.g. 100M, 1G)")
	f.BoolVar(&ro.preallocate, "preallocate", false, "reserve disk space for new destinations (Linux)")
	return cmd
}

// engineConfig merges run flags with the [transfer] config section. Flags
// set on the command line win.
func (ro *runOptions) engineConfig(cmd *cobra.Command, opts *globalOptions) (engine.Config, error) {
	tc := opts.cfg.Transfer

	password := ro.password
	if !cmd.Flags().Changed("password") && tc.Password != nil {
		password = *tc.Password
	}
	if ro.askPassword {
		pw, err := ui.PromptPassword(opts.stderr, os.Stdin, "password: ")
		if err != nil {
			return engine.Config{}, err
		}
		password = pw
	}

	chunk, err := sizeOption(cmd, "chunk-size", ro.chunkSize, tc.ChunkSize)
	if err != nil {
		return engine.Config{}, fmt.Errorf("invalid chunk size: %w", err)
	}
	if chunk <= 0 || chunk > math.MaxInt32 {
		return engine.Config{}, fmt.Errorf("chunk size %d out of range", chunk)
	}
	syncThreshold, err := sizeOption(cmd, "sync-threshold", ro.syncThreshold, tc.SyncThreshold)
	if err != nil {
		return engine.Config{}, fmt.Errorf("invalid sync threshold: %w", err)
	}
	bwLimit, err := sizeOption(cmd, "bwlimit", ro.bwLimit, tc.BWLimit)
	if err != nil {
		return engine.Config{}, fmt.Errorf("invalid --bwlimit: %w", err)
	}
	prealloc := ro.preallocate
	if !cmd.Flags().Changed("preallocate") && tc.Preallocate != nil {
		prealloc = *tc.Preallocate
	}

	return engine.Config{
		Password:      password,
		Algorithm:     cipher.XorKeystream,
		ChunkSize:     int(chunk),
		SyncThreshold: syncThreshold,
		BWLimit:       bwLimit,
		Preallocate:   prealloc,
		Logger:        slog.Default(),
	}, nil
}

// selectTasks resolves the tasks to run: every unfinished task in id order
// for --all, otherwise the given ids in argument order.
func selectTasks(store *task.Store, all bool, args []string) ([]*task.Task, error) {
	if all {
		var tasks []*task.Task
		for _, t := range store.List() {
			if t.Status != task.Completed {
				tasks = append(tasks, t)
			}
		}
		slices.SortFunc(tasks, func(a, b *task.Task) int { return a.ID - b.ID })
		return tasks, nil
	}

	tasks := make([]*task.Task, 0, len(args))
	for _, arg := range args {
		id, err := parseTaskID(arg)
		if err != nil {
			return nil, err
		}
		t, err := store.Get(id)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", id, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

//nolint:revive // cognitive-complexity: orchestrates engine, presenter and signals
func runTasks(cmd *cobra.Command, args []string, opts *globalOptions, ro *runOptions) error {
	store := opts.openStore(cmd)
	tasks, err := selectTasks(store, ro.all, args)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		slog.Info("nothing to run")
		return nil
	}

	ecfg, err := ro.engineConfig(cmd, opts)
	if err != nil {
		return err
	}
	collector := stats.NewCollector()
	ecfg.Stats = collector
	eng, err := engine.New(store, ecfg)
	if err != nil {
		return err
	}

	// A signal pauses the running task; remaining tasks are left untouched.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := make(chan event.Event, 256)
	onProgress, onError := event.Forward(events)
	for _, t := range tasks {
		_ = store.SetCallbacks(t.ID, onProgress, onError) //nolint:errcheck // ids come from the store
	}

	presenterEvents := (<-chan event.Event)(events)
	if opts.logFile != "" {
		presenterEvents = logEvents(events)
	}

	var stopRequested atomic.Bool
	pause := func() {
		stopRequested.Store(true)
		eng.RequestPause()
	}

	isTTY := opts.stderr == io.Writer(os.Stderr) && ui.IsTTY(os.Stderr.Fd())
	useTUI := ro.useTUI && isTTY
	var presenter ui.Presenter
	if useTUI {
		presenter = tui.NewPresenter(tui.Config{
			Stats: collector,
			Theme: opts.cfg.Theme,
			Pause: pause,
		})
	} else {
		if ro.useTUI {
			slog.Warn("--tui requires a terminal, falling back to inline output")
		}
		presenter = ui.NewPresenter(ui.Config{
			Writer:    opts.stdout,
			ErrWriter: opts.stderr,
			Stats:     collector,
			IsTTY:     isTTY,
			Quiet:     opts.quiet,
			Width:     ui.TermWidth(os.Stderr.Fd()),
		})
	}

	slog.Debug("starting run", "tasks", len(tasks), "chunk", ecfg.ChunkSize, "bwlimit", ecfg.BWLimit)

	var outcome runOutcome
	transfer := func() {
		outcome = transferAll(ctx, eng, tasks, events, &stopRequested, opts.openJournal(cmd))
		close(events)
	}

	if useTUI {
		// Bubble Tea needs the foreground to own stdin.
		done := make(chan struct{})
		go func() {
			defer close(done)
			transfer()
		}()

		if err := presenter.Run(presenterEvents); err != nil {
			slog.Warn("tui exited", "error", err)
		}
		pause()
		for range presenterEvents { //nolint:revive // drain so the engine never blocks
		}
		<-done
	} else {
		var presenterErr error
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			presenterErr = presenter.Run(presenterEvents)
		}()

		transfer()
		wg.Wait()
		if presenterErr != nil {
			fmt.Fprintf(opts.stderr, "presenter: %v\n", presenterErr)
		}
	}
	stop()

	if !opts.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(opts.stderr, summary)
		}
	}

	switch {
	case outcome.failed > 0:
		return &exitError{code: 2}
	case outcome.paused > 0:
		return &exitError{code: 1}
	}
	return nil
}

type runOutcome struct {
	completed int
	paused    int
	failed    int
}

// transferAll runs tasks one at a time and reports each state change on
// events. Failures move on to the next task; a pause ends the run. Each run
// is recorded in j when it is non-nil.
func transferAll(
	ctx context.Context,
	eng *engine.Engine,
	tasks []*task.Task,
	events chan<- event.Event,
	stopRequested *atomic.Bool,
	j *journal.Journal,
) runOutcome {
	var out runOutcome
	for _, t := range tasks {
		if stopRequested.Load() || ctx.Err() != nil {
			break
		}

		events <- event.Event{
			Type:      event.TaskStarted,
			Timestamp: time.Now(),
			TaskID:    t.ID,
			Path:      t.SrcPath,
			Total:     t.TotalSize,
			Offset:    t.CurrentOffset,
		}

		startOffset := t.CurrentOffset
		start := time.Now()
		res := eng.Run(ctx, t)
		elapsed := time.Since(start)
		recordRun(j, t, startOffset, start, elapsed, res)

		switch res.Status {
		case task.Completed:
			out.completed++
			var speed float64
			if elapsed > 0 {
				speed = float64(res.BytesWritten) / elapsed.Seconds()
			}
			events <- event.Event{
				Type:      event.TaskCompleted,
				Timestamp: time.Now(),
				TaskID:    t.ID,
				Offset:    t.CurrentOffset,
				Percent:   100,
				Speed:     speed,
			}
		case task.Paused:
			out.paused++
			events <- event.Event{
				Type:      event.TaskPaused,
				Timestamp: time.Now(),
				TaskID:    t.ID,
				Offset:    t.CurrentOffset,
				Percent:   t.Percent(),
			}
			return out
		default:
			out.failed++
			var terr *engine.TransferError
			if res.Err != nil && !errors.As(res.Err, &terr) {
				// Not reported through OnError.
				events <- event.Event{
					Type:      event.TaskFailed,
					Timestamp: time.Now(),
					TaskID:    t.ID,
					Message:   res.Err.Error(),
				}
			}
		}
	}
	return out
}

func recordRun(j *journal.Journal, t *task.Task, startOffset int64, started time.Time, elapsed time.Duration, res engine.Result) {
	if j == nil {
		return
	}
	e := journal.Entry{
		TaskID:      t.ID,
		Src:         t.SrcPath,
		Dst:         t.DstPath,
		Status:      res.Status,
		StartOffset: startOffset,
		EndOffset:   t.CurrentOffset,
		Started:     started,
		Duration:    elapsed,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if err := j.Record(e); err != nil {
		slog.Warn("record run", "task", t.ID, "error", err)
	}
}

// logEvents tees every event into the debug log before passing it on.
func logEvents(in <-chan event.Event) <-chan event.Event {
	out := make(chan event.Event, cap(in))
	go func() {
		defer close(out)
		for ev := range in {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.Int("task", ev.TaskID),
			}
			switch ev.Type {
			case event.TaskStarted:
				attrs = append(attrs,
					slog.String("path", ev.Path),
					slog.Int64("total", ev.Total),
					slog.Int64("offset", ev.Offset),
				)
			case event.TaskProgress:
				attrs = append(attrs, slog.Float64("percent", ev.Percent), slog.Float64("speed", ev.Speed))
			case event.TaskCompleted, event.TaskPaused:
				attrs = append(attrs, slog.Int64("offset", ev.Offset))
			case event.TaskFailed:
				attrs = append(attrs, slog.String("code", ev.Code.String()), slog.String("error", ev.Message))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "safetrix.event", attrs...)
			out <- ev
		}
	}()
	return out
}
