//go:build unix

package process

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrEmptyPath is returned by Spawn when no executable is configured.
const ErrEmptyPath = sentinel.Error("executable path must not be empty")

// SpawnConfig describes one re-execution of the current program.
type SpawnConfig struct {
	Path string   // Executable to run
	Args []string // Arguments after argv[0]
	Env  []string // Full environment of the child
	Dir  string   // Working directory; empty inherits the caller's

	// Stderr is handed to the child as fd 2 so failures before stream
	// redirection still reach the invoking terminal. Nil means /dev/null.
	// It is an *os.File rather than an io.Writer so that exec passes the
	// descriptor directly instead of copying through a goroutine that would
	// die with the parent.
	Stderr *os.File
}

// Spawn starts the child described by cfg and returns its pid. The child is
// released immediately: the caller is about to exit and never waits for it.
// Stdin and stdout of the child are bound to /dev/null.
func Spawn(cfg SpawnConfig) (int, error) {
	if cfg.Path == "" {
		return 0, ErrEmptyPath
	}

	cmd := exec.Command(cfg.Path, cfg.Args...) //nolint:gosec // G204: re-executes our own binary
	cmd.Env = cfg.Env
	cmd.Dir = cfg.Dir
	if cfg.Stderr != nil {
		cmd.Stderr = cfg.Stderr
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", cfg.Path, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release pid %d: %w", pid, err)
	}
	return pid, nil
}

// NewSession makes the calling process the leader of a new session with no
// controlling terminal. It fails when the caller already leads a process group.
func NewSession() (int, error) {
	sid, err := unix.Setsid()
	if err != nil {
		return 0, fmt.Errorf("setsid: %w", err)
	}
	return sid, nil
}

// IsSessionLeader reports whether the calling process leads its session.
func IsSessionLeader() bool {
	sid, err := unix.Getsid(0)
	return err == nil && sid == os.Getpid()
}
