package daemonize

import (
	"log/slog"

	"github.com/giantswarm/daemonize/internal/logging"
)

// SetLogger replaces the package-level logger used by daemonize. The
// provided logger should already carry any attributes the caller wants;
// daemonize adds none.
//
// If l is nil, the logger resets to slog.Default() with a "component"
// attribute, derived on the next Logger call and then cached. Call
// SetLogger(nil) after slog.SetDefault to pick up the change.
//
// In the daemon stage the standard streams are redirected before anything is
// logged, so a logger writing to os.Stderr ends up in the configured stderr
// file.
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the logger daemonize currently writes to.
func Logger() *slog.Logger {
	return logging.Logger()
}
