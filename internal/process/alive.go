//go:build unix

package process

import (
	"errors"
	"fmt"
	"slices"
	"time"

	ps "github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"

	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrNotFound is returned when a signal is sent to a pid that no longer exists.
const ErrNotFound = sentinel.Error("no such process")

// ErrInvalidPID is returned for pids that cannot name a single process.
const ErrInvalidPID = sentinel.Error("pid must be positive")

// Alive reports whether pid names a running process. A zombie (exited but not
// yet reaped) counts as gone: it still answers kill(2) but holds no resources
// and will never run user code again.
func Alive(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	// EPERM means the process exists but belongs to another user.
	switch err := unix.Kill(pid, 0); {
	case err == nil, errors.Is(err, unix.EPERM):
	case errors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, fmt.Errorf("probe pid %d: %w", pid, err)
	}

	p, err := ps.NewProcess(int32(pid)) //nolint:gosec // G115: pid_t is 32 bits
	if err != nil {
		if errors.Is(err, ps.ErrorProcessNotRunning) {
			return false, nil
		}
		// The signal probe already succeeded; trust it.
		return true, nil
	}
	status, err := p.Status()
	if err != nil {
		return true, nil
	}
	return !slices.Contains(status, ps.Zombie), nil
}

// StartedAt returns the creation time of pid.
func StartedAt(pid int) (time.Time, error) {
	if pid <= 0 {
		return time.Time{}, ErrInvalidPID
	}
	p, err := ps.NewProcess(int32(pid)) //nolint:gosec // G115: pid_t is 32 bits
	if err != nil {
		if errors.Is(err, ps.ErrorProcessNotRunning) {
			return time.Time{}, fmt.Errorf("pid %d: %w", pid, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("inspect pid %d: %w", pid, err)
	}
	ms, err := p.CreateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("create time of pid %d: %w", pid, err)
	}
	return time.UnixMilli(ms), nil
}

// Signal delivers sig to pid. A pid that has already gone away is reported as
// ErrNotFound so callers can treat it as a completed stop.
func Signal(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	if err := unix.Kill(pid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("signal %v to pid %d: %w", sig, pid, ErrNotFound)
		}
		return fmt.Errorf("signal %v to pid %d: %w", sig, pid, err)
	}
	return nil
}
