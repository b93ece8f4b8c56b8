// Command heartbeatd is a small daemon built on daemonize. Once started it
// appends a timestamped heartbeat line to its stdout file every interval.
//
//	heartbeatd start [--config file] [--env-file file]
//	heartbeatd status
//	heartbeatd stop
//	heartbeatd restart
//	heartbeatd config
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/daemonize"
	"github.com/giantswarm/daemonize/cli"
	"github.com/giantswarm/daemonize/internal/config"
)

const appName = "heartbeatd"

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	daemonize.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", appName))

	a := &app{name: appName, stdout: os.Stdout}
	root := newRootCommand(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCommand(a *app) *cobra.Command {
	root := cli.New(a.name, a)
	root.PersistentFlags().StringVar(&a.configFile, "config", "",
		"TOML config file (default: "+a.name+"/config.toml in the XDG config directories)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "",
		"file with "+a.name+" environment overrides")
	root.AddCommand(newConfigCommand(a))
	return root
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	}
}

// app builds the daemon lazily, after cobra has parsed the flags that
// locate its configuration.
type app struct {
	name       string
	configFile string
	envFile    string
	stdout     io.Writer

	once   sync.Once
	cfg    config.Config
	daemon *daemonize.Daemon
	err    error
}

func (a *app) load() {
	a.once.Do(func() {
		a.cfg, a.err = config.Load(config.Source{
			App:        a.name,
			ConfigFile: a.configFile,
			EnvFile:    a.envFile,
		})
		if a.err != nil {
			return
		}
		work := heartbeat(a.stdout, time.Duration(a.cfg.Interval))
		a.daemon, a.err = daemonize.New(a.cfg.PidFile, work, a.cfg.DaemonOptions()...)
	})
}

func (a *app) config() (config.Config, error) {
	a.load()
	return a.cfg, a.err
}

func (a *app) Start() error {
	a.load()
	if a.err != nil {
		return a.err
	}
	return a.daemon.Start()
}

func (a *app) Stop(ctx context.Context) error {
	a.load()
	if a.err != nil {
		return a.err
	}
	return a.daemon.Stop(ctx)
}

func (a *app) Restart(ctx context.Context) error {
	a.load()
	if a.err != nil {
		return a.err
	}
	return a.daemon.Restart(ctx)
}

func (a *app) Status() (daemonize.Status, error) {
	a.load()
	if a.err != nil {
		return daemonize.Status{}, a.err
	}
	return a.daemon.Status()
}

// heartbeat writes one line to w right away and then every interval until
// ctx is cancelled.
func heartbeat(w io.Writer, interval time.Duration) daemonize.Work {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		pid := os.Getpid()
		for {
			if _, err := fmt.Fprintf(w, "%s heartbeat pid=%d\n", time.Now().Format(time.RFC3339), pid); err != nil {
				return fmt.Errorf("write heartbeat: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}
