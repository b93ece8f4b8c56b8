//go:build unix

package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/daemonize/internal/sentinel"
)

// Sentinel errors returned by WaitGone.
const (
	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = sentinel.Error("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = sentinel.Error("timeout must be positive")

	// ErrWaitTimeout indicates the process was still alive when the timeout elapsed.
	ErrWaitTimeout = sentinel.Error("timed out waiting for process to exit")
)

// WaitConfig configures WaitGone.
type WaitConfig struct {
	Interval time.Duration // Poll interval
	Timeout  time.Duration // Overall bound
	Name     string        // For logging and errors (e.g., "daemon")
	Logger   *slog.Logger  // Optional, defaults to slog.Default()
}

// WaitGone polls Alive(pid) every cfg.Interval until the process is gone.
// It returns ErrWaitTimeout (wrapped) when cfg.Timeout elapses first, and the
// context error when ctx is canceled.
func WaitGone(ctx context.Context, cfg WaitConfig, pid int) error {
	if cfg.Name == "" {
		return errors.New("wait gone: name must not be empty")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// The condition is invoked sequentially, so attempt needs no locking.
	attempt := 0
	err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(context.Context) (bool, error) {
			attempt++
			alive, err := Alive(pid)
			if err != nil {
				return false, err
			}
			return !alive, nil
		})
	if err == nil {
		log.Debug("process exited", "name", cfg.Name, "pid", pid, "attempt", attempt)
		return nil
	}

	// An interrupted poll with a live parent context means our own deadline fired.
	if ctx.Err() == nil && wait.Interrupted(err) {
		return fmt.Errorf("wait for %s (pid %d) after %s: %w", cfg.Name, pid, cfg.Timeout, ErrWaitTimeout)
	}
	return fmt.Errorf("wait for %s (pid %d): %w", cfg.Name, pid, err)
}
