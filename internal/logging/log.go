// Package logging holds the package-level logger shared by daemonize and its
// internal packages.
package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger is the custom logger installed with SetLogger, or nil.
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches slog.Default() with the component attribute. It is
// derived lazily so a slog.SetDefault made before first use is honored.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the installed logger, or the cached default. Safe for
// concurrent use.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := slog.Default().With("component", "daemonize")
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

// SetLogger installs l. A nil l restores the default and drops the cached
// one, so the next Logger call picks up the current slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
