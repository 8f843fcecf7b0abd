package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bamsammich/safetrix/internal/engine"
	"github.com/bamsammich/safetrix/internal/task"
	"github.com/bamsammich/safetrix/internal/ui"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	var priority int
	cmd := &cobra.Command{
		Use:   "add <source> <destination>",
		Short: "Add a transfer task and print its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.openStore(cmd)
			id, err := store.Add(args[0], args[1], priority)
			if errors.Is(err, task.ErrCapacityExceeded) {
				return fmt.Errorf("task store is full (%d tasks)", store.Cap())
			}
			if err != nil {
				return err
			}
			slog.Debug("task added", "id", id, "src", args[0], "dst", args[1])
			fmt.Fprintln(opts.stdout, id)
			return nil
		},
	}
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "informational priority stored with the task")
	return cmd
}

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks := opts.openStore(cmd).List()
			fmt.Fprint(opts.stdout, ui.TaskTable(tasks, opts.palette()))
			return nil
		},
	}
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			t, err := opts.openStore(cmd).Get(id)
			if err != nil {
				return fmt.Errorf("task %d: %w", id, err)
			}
			fmt.Fprint(opts.stdout, ui.TaskDetail(t, opts.palette()))
			return nil
		},
	}
}

func newSyncCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Rewrite the task store file now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.openStore(cmd)
			if err := store.Sync(); err != nil {
				return fmt.Errorf("sync %s: %w", store.Path(), err)
			}
			slog.Info("task store synced", "path", store.Path(), "tasks", store.Len())
			return nil
		},
	}
}

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file-a> <file-b>",
		Short: "Compare two files by BLAKE3 digest",
		Long: "Compare two files by BLAKE3 digest. Decrypt a destination by running a\n" +
			"second task over it with the same password, then verify it against the source.",
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			res, err := engine.VerifyFiles(args[0], args[1])
			if err != nil {
				return err
			}
			if !res.Match() {
				fmt.Fprintf(opts.stdout, "MISMATCH\n  %s  %s\n  %s  %s\n", res.HashA, args[0], res.HashB, args[1])
				return &exitError{code: 1}
			}
			fmt.Fprintf(opts.stdout, "match  %s\n", res.HashA)
			return nil
		},
	}
}

func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show past transfer runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int
			if len(args) == 1 {
				var err error
				if id, err = parseTaskID(args[0]); err != nil {
					return err
				}
			}
			j := opts.openJournal(cmd)
			if j == nil {
				return errors.New("run journal is disabled or unavailable")
			}
			entries, err := j.History(id, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(opts.stdout, ui.HistoryTable(entries, opts.palette()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show (0 = all)")
	return cmd
}
