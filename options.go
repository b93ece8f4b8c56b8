package daemonize

import (
	"fmt"
	"os"
	"slices"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("daemonize: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("daemonize: %s must not be empty", name))
	}
}

// Option configures a Daemon during construction via New.
//
// Several With* functions panic on invalid input (empty paths, non-positive
// durations, nil hooks). Option values are usually constants, so an invalid
// one is a programmer error, in the manner of [regexp.MustCompile].
type Option func(*config)

// WithStdin sets the file standard input is read from in the daemon. The
// file must exist.
//
// Default: /dev/null.
//
// Panics if path is empty.
func WithStdin(path string) Option {
	requireNonEmpty("stdin path", path)
	return func(c *config) {
		c.Stdin = path
	}
}

// WithStdout sets the file standard output is appended to in the daemon.
// Missing files and parent directories are created.
//
// Default: /dev/null.
//
// Panics if path is empty.
func WithStdout(path string) Option {
	requireNonEmpty("stdout path", path)
	return func(c *config) {
		c.Stdout = path
	}
}

// WithStderr sets the file standard error is appended to in the daemon.
// The package logger writes here too unless SetLogger installs another sink.
//
// Default: /dev/null.
//
// Panics if path is empty.
func WithStderr(path string) Option {
	requireNonEmpty("stderr path", path)
	return func(c *config) {
		c.Stderr = path
	}
}

// WithWorkDir sets the daemon's working directory.
//
// Default: "/".
//
// Panics if dir is empty.
func WithWorkDir(dir string) Option {
	requireNonEmpty("work dir", dir)
	return func(c *config) {
		c.WorkDir = dir
	}
}

// WithUmask sets the daemon's file mode creation mask.
//
// Default: 0.
//
// Panics if mask is outside 0 to 0o777.
func WithUmask(mask int) Option {
	if mask < 0 || mask > 0o777 {
		panic(fmt.Sprintf("daemonize: umask must be within 0 and 0777, got %#o", mask))
	}
	return func(c *config) {
		c.Umask = mask
	}
}

// WithFileMode sets the permission of stdout and stderr files created by the
// daemon. The umask still applies.
//
// Default: 0644.
//
// Panics if mode is zero or carries bits other than permissions.
func WithFileMode(mode os.FileMode) Option {
	if mode == 0 || mode&^os.ModePerm != 0 {
		panic(fmt.Sprintf("daemonize: file mode must be a non-zero permission, got %v", mode))
	}
	return func(c *config) {
		c.FileMode = mode
	}
}

// WithStopTimeout sets how long Stop waits for the daemon to exit after
// SIGTERM before escalating to SIGKILL.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *config) {
		c.StopTimeout = d
	}
}

// WithKillTimeout sets how long Stop waits after SIGKILL before it reports
// ErrStopTimeout.
//
// Default: 5 seconds.
//
// Panics if d <= 0.
func WithKillTimeout(d time.Duration) Option {
	requirePositive("kill timeout", d)
	return func(c *config) {
		c.KillTimeout = d
	}
}

// WithPollInterval sets how often Stop checks whether the daemon is gone.
//
// Default: 100 milliseconds.
//
// Panics if d <= 0.
func WithPollInterval(d time.Duration) Option {
	requirePositive("poll interval", d)
	return func(c *config) {
		c.PollInterval = d
	}
}

// WithShutdownGrace sets how long the daemon waits for its work function to
// return after a termination signal. When it elapses the process terminates
// with the signal's default action.
//
// Default: 5 seconds.
//
// Panics if d <= 0.
func WithShutdownGrace(d time.Duration) Option {
	requirePositive("shutdown grace", d)
	return func(c *config) {
		c.ShutdownGrace = d
	}
}

// WithBeforeStop registers fn to run in the daemon when a termination signal
// arrives, before the pidfile is removed. fn runs concurrently with the work
// function, whose context is already cancelled.
//
// Panics if fn is nil.
func WithBeforeStop(fn func()) Option {
	if fn == nil {
		panic("daemonize: before-stop hook must not be nil")
	}
	return func(c *config) {
		c.BeforeStop = fn
	}
}

// WithCommand sets the program and arguments re-executed for each detachment
// stage. The program must reach Start with the same configuration.
//
// Default: os.Executable() with os.Args[1:].
//
// Panics if path is empty.
func WithCommand(path string, args ...string) Option {
	requireNonEmpty("command path", path)
	args = slices.Clone(args)
	return func(c *config) {
		c.Executable = path
		c.Args = slices.Clone(args)
		c.argsSet = true
	}
}
