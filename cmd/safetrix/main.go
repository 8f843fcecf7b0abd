package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/safetrix/internal/config"
	"github.com/bamsammich/safetrix/internal/journal"
	"github.com/bamsammich/safetrix/internal/task"
	"github.com/bamsammich/safetrix/internal/ui"
)

var version = "dev"

const defaultStorePath = "data/safetrix.db"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globalOptions holds the persistent flags and the state built from them
// before any subcommand runs.
type globalOptions struct {
	storePath   string
	configPath  string
	verbose     bool
	quiet       bool
	logFile     string
	showVersion bool

	stdout io.Writer
	stderr io.Writer

	cfg     config.Config
	store   *task.Store
	journal *journal.Journal
	logSink io.Closer
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &globalOptions{stdout: stdout, stderr: stderr}
	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	opts.close()

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "safetrix",
		Short:         "Resumable, keystream-encrypted file transfers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.showVersion {
				fmt.Fprintf(opts.stdout, "safetrix %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.storePath, "store", defaultStorePath, "task store file")
	pf.StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/safetrix/config.toml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().BoolVar(&opts.showVersion, "version", false, "print version and exit")

	rootCmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newRunCmd(opts),
		newSyncCmd(opts),
		newVerifyCmd(opts),
		newHistoryCmd(opts),
		docsCmd,
	)
	return rootCmd
}

// setup configures logging and loads the config file.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if o.verbose {
		logLevel = slog.LevelDebug
	} else if !o.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(o.stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if o.logFile != "" {
		lf, err := os.Create(o.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		o.logSink = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))

	var err error
	if cmd.Flags().Changed("config") {
		o.cfg, err = config.LoadFile(o.configPath)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	return nil
}

// openStore opens the task store on first use, applying config defaults
// for flags not set on the command line.
func (o *globalOptions) openStore(cmd *cobra.Command) *task.Store {
	if o.store != nil {
		return o.store
	}
	path := o.storePath
	if !cmd.Flags().Changed("store") && o.cfg.Store.Path != nil {
		path = *o.cfg.Store.Path
	}
	maxTasks := task.DefaultMaxTasks
	if o.cfg.Store.MaxTasks != nil && *o.cfg.Store.MaxTasks > 0 {
		maxTasks = *o.cfg.Store.MaxTasks
	}
	o.store = task.Open(path, task.WithMaxTasks(maxTasks), task.WithLogger(slog.Default()))
	slog.Debug("task store opened", "path", path, "tasks", o.store.Len(), "max", maxTasks)
	return o.store
}

// openJournal opens the run journal beside the task store. It returns nil
// when the journal is disabled in config or cannot be opened; transfers
// never depend on it.
func (o *globalOptions) openJournal(cmd *cobra.Command) *journal.Journal {
	if o.journal != nil {
		return o.journal
	}
	path := journal.DefaultPath(o.openStore(cmd).Path())
	if o.cfg.Store.Journal != nil {
		path = *o.cfg.Store.Journal
	}
	if path == "" {
		return nil
	}
	j, err := journal.Open(path)
	if err != nil {
		slog.Warn("run journal unavailable", "path", path, "error", err)
		return nil
	}
	o.journal = j
	return j
}

// close persists pending task changes and releases the log file.
func (o *globalOptions) close() {
	if o.store != nil {
		_ = o.store.Flush() //nolint:errcheck // logged by the store
	}
	if o.journal != nil {
		if err := o.journal.Close(); err != nil {
			slog.Warn("close run journal", "error", err)
		}
	}
	if o.logSink != nil {
		_ = o.logSink.Close() //nolint:errcheck // best effort on exit
	}
}

func (o *globalOptions) palette() ui.Palette {
	return ui.DefaultPalette().WithTheme(o.cfg.Theme)
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
