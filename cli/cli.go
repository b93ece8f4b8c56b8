// Package cli exposes a daemon's lifecycle as start, stop, restart and status
// commands.
//
// The program's main hands its arguments to the returned command:
//
//	root := cli.New("mydaemon", d)
//	if err := root.ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
//
// The detachment stages re-execute the program with the same arguments, so
// they dispatch to the same command and resume the protocol there.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/daemonize"
	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrUsage is returned when no command is given.
const ErrUsage = sentinel.Error("a command is required")

// Controller is the part of *daemonize.Daemon the commands drive.
type Controller interface {
	Start() error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Status() (daemonize.Status, error)
}

// New returns the root command for the daemon called name. Callers may add
// their own subcommands to it.
func New(name string, ctl Controller) *cobra.Command {
	root := &cobra.Command{
		Use:   name + " <command>",
		Short: "Control the " + name + " daemon",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return ErrUsage
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newStartCommand(name, ctl),
		newStopCommand(name, ctl),
		newRestartCommand(ctl),
		newStatusCommand(name, ctl),
	)
	return root
}

func newStartCommand(name string, ctl Controller) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start " + name + " in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return ctl.Start()
		},
	}
}

func newStopCommand(name string, ctl Controller) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx, cancel := withOptionalTimeout(cmd.Context(), timeout)
			defer cancel()

			err := ctl.Stop(ctx)
			if errors.Is(err, daemonize.ErrNotRunning) {
				fmt.Fprintln(cmd.ErrOrStderr(), name+" is not running")
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up waiting after this long (0 waits for the configured stop and kill timeouts)")
	return cmd
}

func newRestartCommand(ctl Controller) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Stop the daemon if it runs, then start it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx, cancel := withOptionalTimeout(cmd.Context(), timeout)
			defer cancel()
			return ctl.Restart(ctx)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up waiting for the old daemon after this long")
	return cmd
}

func newStatusCommand(name string, ctl Controller) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether " + name + " is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			st, err := ctl.Status()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, st)
			return nil
		},
	}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
