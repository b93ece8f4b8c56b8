//go:build unix

package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/daemonize/internal/sentinel"
)

// DefaultStopTimeout is how long Terminate waits after SIGTERM before
// escalating to SIGKILL.
const DefaultStopTimeout = 10 * time.Second

// DefaultKillTimeout bounds the wait after SIGKILL. SIGKILL cannot be caught,
// so this only fires for processes stuck in uninterruptible sleep.
const DefaultKillTimeout = 5 * time.Second

// DefaultPollInterval is the liveness polling interval used while stopping.
const DefaultPollInterval = 100 * time.Millisecond

// ErrStillAlive is returned when a process survives SIGKILL for the whole kill timeout.
const ErrStillAlive = sentinel.Error("process still alive after SIGKILL")

// TerminateConfig configures Terminate. Zero durations fall back to the defaults.
type TerminateConfig struct {
	Name        string        // For logging and errors
	StopTimeout time.Duration // Wait after SIGTERM
	KillTimeout time.Duration // Wait after SIGKILL
	Interval    time.Duration // Liveness poll interval
	Logger      *slog.Logger
}

func (c TerminateConfig) withDefaults() TerminateConfig {
	if c.Name == "" {
		c.Name = "process"
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.KillTimeout <= 0 {
		c.KillTimeout = DefaultKillTimeout
	}
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Terminate stops pid and blocks until it is gone.
//
// Shutdown flow:
//  1. Send SIGTERM.
//  2. Poll liveness every Interval for up to StopTimeout.
//  3. If the process is still alive, send SIGKILL and poll for up to KillTimeout.
//
// The returned bool reports whether SIGKILL was needed. A pid that is already
// gone when the first signal is sent counts as a successful stop.
func Terminate(ctx context.Context, pid int, cfg TerminateConfig) (bool, error) {
	if pid <= 0 {
		return false, ErrInvalidPID
	}
	cfg = cfg.withDefaults()

	if err := Signal(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", cfg.Name, err)
	}

	err := WaitGone(ctx, WaitConfig{
		Interval: cfg.Interval,
		Timeout:  cfg.StopTimeout,
		Name:     cfg.Name,
		Logger:   cfg.Logger,
	}, pid)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrWaitTimeout) {
		return false, err
	}

	cfg.Logger.Warn("process did not exit after SIGTERM; sending SIGKILL",
		"name", cfg.Name, "pid", pid, "stop_timeout", cfg.StopTimeout)
	if err := Signal(pid, unix.SIGKILL); err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return true, fmt.Errorf("%s: %w", cfg.Name, err)
	}

	err = WaitGone(ctx, WaitConfig{
		Interval: cfg.Interval,
		Timeout:  cfg.KillTimeout,
		Name:     cfg.Name,
		Logger:   cfg.Logger,
	}, pid)
	if errors.Is(err, ErrWaitTimeout) {
		return true, fmt.Errorf("%s (pid %d): %w", cfg.Name, pid, ErrStillAlive)
	}
	return true, err
}
