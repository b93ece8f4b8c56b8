package daemonize

import (
	"fmt"
	"time"
)

// Status describes the daemon as seen through its pidfile.
type Status struct {
	// Running reports whether the pidfile names a live process.
	Running bool

	// PID is the pid recorded in the pidfile, or 0 when there is none.
	PID int

	// Stale reports a pidfile that exists but names no live process, or
	// holds no valid pid.
	Stale bool

	// StartedAt is the creation time of the running process. Zero when
	// unknown or not running.
	StartedAt time.Time
}

// Uptime returns how long the daemon has been running, or 0 when it is not
// running or its start time is unknown.
func (s Status) Uptime() time.Duration {
	if !s.Running || s.StartedAt.IsZero() {
		return 0
	}
	return time.Since(s.StartedAt)
}

func (s Status) String() string {
	switch {
	case s.Running && !s.StartedAt.IsZero():
		return fmt.Sprintf("running (pid %d, up %s)", s.PID, s.Uptime().Round(time.Second))
	case s.Running:
		return fmt.Sprintf("running (pid %d)", s.PID)
	case s.Stale && s.PID > 0:
		return fmt.Sprintf("not running (stale pidfile, pid %d)", s.PID)
	case s.Stale:
		return "not running (invalid pidfile)"
	default:
		return "not running"
	}
}
