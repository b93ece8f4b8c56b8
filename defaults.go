package daemonize

import (
	"os"
	"time"
)

// Default configuration values for New.
const (
	// DefaultStdin is where standard input is read from in the daemon.
	DefaultStdin = os.DevNull

	// DefaultStdout is where standard output is appended in the daemon.
	DefaultStdout = os.DevNull

	// DefaultStderr is where standard error is appended in the daemon.
	DefaultStderr = os.DevNull

	// DefaultWorkDir is the daemon's working directory. The root directory
	// keeps the daemon from pinning a mounted filesystem.
	DefaultWorkDir = "/"

	// DefaultUmask is the file mode creation mask of the daemon.
	DefaultUmask = 0

	// DefaultFileMode is the permission of stdout and stderr files the
	// daemon creates.
	DefaultFileMode os.FileMode = 0o644

	// DefaultStopTimeout is how long Stop waits after SIGTERM before it
	// sends SIGKILL.
	DefaultStopTimeout = 10 * time.Second

	// DefaultKillTimeout is how long Stop waits after SIGKILL.
	DefaultKillTimeout = 5 * time.Second

	// DefaultPollInterval is how often Stop checks whether the daemon is gone.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultShutdownGrace is how long the daemon lets its work function
	// return after a termination signal before the process is terminated.
	DefaultShutdownGrace = 5 * time.Second
)

// StageEnv is the environment variable carrying the detachment stage across
// re-executions. It is removed from the environment before the work function
// runs.
const StageEnv = "DAEMONIZE_STAGE"
