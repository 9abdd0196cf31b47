package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todomvc/internal/client"
	"github.com/BuzzLyutic/todomvc/internal/config"
	"github.com/BuzzLyutic/todomvc/internal/logging"
	"github.com/BuzzLyutic/todomvc/internal/tui"
	"github.com/BuzzLyutic/todomvc/internal/worker"
)

// app is built once per invocation in PersistentPreRunE.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	pool   *worker.Pool
	store  *client.Store
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "Terminal client for the todo server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.store)
		},
	}

	flags := root.PersistentFlags()
	flags.String("server", "", "server base URL (env SERVER_URL)")
	flags.String("filter", "all", "all, active or completed; indexes count within it")
	flags.String("log-file", "", "write client logs to this file (env LOG_FILE)")
	flags.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.Duration("timeout", 0, "per-request timeout, 0 for none (env REQUEST_TIMEOUT)")
	_ = v.BindPFlag("server_url", flags.Lookup("server"))
	_ = v.BindPFlag("filter", flags.Lookup("filter"))
	_ = v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("request_timeout", flags.Lookup("timeout"))

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newDoneCmd(a),
		newClearCmd(a),
	)
	return root
}

func (a *app) setup(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	filter, err := client.ParseFilter(v.GetString("filter"))
	if err != nil {
		return err
	}
	logger, err := logging.NewClient(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.pool = worker.NewPool(logger, 16)
	a.store = client.NewStore(client.NewClient(cfg.ServerURL, cfg.RequestTimeout), a.pool, logger)
	a.store.SetFilter(filter)
	logger.Debug("client ready", zap.String("server", cfg.ServerURL), zap.Stringer("filter", filter))
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// await handles results until the one for h arrives and returns its error.
func (a *app) await(ctx context.Context, h worker.Handle) error {
	for {
		select {
		case r, ok := <-a.store.Results():
			if !ok {
				return errors.New("dispatcher stopped")
			}
			err := a.store.Handle(r)
			if r.Handle.ID == h.ID {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *app) fetch(ctx context.Context) error {
	return a.await(ctx, a.store.Fetch())
}

func parseIndex(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", s)
	}
	return idx, nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print the tasks that fit --filter",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			st := a.store.Snapshot()
			out := cmd.OutOrStdout()
			for i, e := range st.Visible() {
				box := "[ ]"
				if e.Completed {
					box = "[x]"
				}
				fmt.Fprintf(out, "%3d %s %s\n", i, box, e.Content)
			}
			left := st.TotalActive()
			noun := "items"
			if left == 1 {
				noun = "item"
			}
			fmt.Fprintf(out, "%d %s left (%s)\n", left, noun, st.Filter)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <content...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.SetValue(strings.Join(args, " "))
			h, ok := a.store.Add()
			if !ok {
				return errors.New("content must not be empty")
			}
			if err := a.await(cmd.Context(), h); err != nil {
				return err
			}
			st := a.store.Snapshot()
			e := st.Entries[len(st.Entries)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %q\n", e.ID, e.Content)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the task at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			visible := a.store.Snapshot().Visible()
			h, err := a.store.Remove(idx)
			if err != nil {
				return err
			}
			if err := a.await(cmd.Context(), h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", visible[idx].Content)
			return nil
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Mark the task at index completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			visible := a.store.Snapshot().Visible()
			if idx >= 0 && idx < len(visible) && visible[idx].Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already completed\n", visible[idx].Content)
				return nil
			}
			h, err := a.store.Toggle(idx)
			if err != nil {
				return err
			}
			if err := a.await(cmd.Context(), h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %q\n", visible[idx].Content)
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fetch(cmd.Context()); err != nil {
				return err
			}
			n := a.store.Snapshot().TotalCompleted()
			if err := a.await(cmd.Context(), a.store.ClearCompleted()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d completed\n", n)
			return nil
		},
	}
}
