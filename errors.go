package daemonize

import (
	"github.com/giantswarm/daemonize/internal/pidfile"
	"github.com/giantswarm/daemonize/internal/sentinel"
)

// Sentinel errors for error inspection with errors.Is.
const (
	// ErrAlreadyRunning is returned by Start when the pidfile names a live
	// process. In the daemon stage it is logged when another daemon already
	// holds the pidfile lock.
	ErrAlreadyRunning = sentinel.Error("daemon already running")

	// ErrNotRunning is returned by Stop when the pidfile is missing or names
	// a process that no longer exists.
	ErrNotRunning = sentinel.Error("daemon is not running")

	// ErrForkFailed is returned when a detachment stage cannot be spawned.
	ErrForkFailed = sentinel.Error("fork failed")

	// ErrSessionFailed is logged by the session stage when setsid fails.
	ErrSessionFailed = sentinel.Error("create session failed")

	// ErrRedirectFailed is logged by the daemon stage when a standard stream
	// cannot be bound to its target.
	ErrRedirectFailed = sentinel.Error("redirect standard streams failed")

	// ErrStopTimeout is returned by Stop when the daemon survives both
	// SIGTERM and SIGKILL within the configured timeouts.
	ErrStopTimeout = sentinel.Error("daemon did not stop in time")

	// ErrInvalidPidfile wraps pidfile content that is not a positive pid.
	ErrInvalidPidfile = pidfile.ErrInvalid

	// ErrNilWork is returned by New when no work function is given.
	ErrNilWork = sentinel.Error("work function must not be nil")

	// ErrEmptyPidfile is returned by New when the pidfile path is empty.
	ErrEmptyPidfile = sentinel.Error("pidfile path must not be empty")

	// ErrUnsupported is returned on platforms without the Unix process model.
	ErrUnsupported = sentinel.Error("daemonize requires a unix system")
)
