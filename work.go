package daemonize

import "context"

// Work is the function a daemon runs once it is detached.
//
// ctx is cancelled when a termination signal arrives. A nil return ends the
// daemon with exit status 0, a non-nil error with status 1.
type Work func(ctx context.Context) error

// Simple adapts a function that neither observes cancellation nor fails.
// Such work is interrupted by the process exit after the shutdown grace
// period.
func Simple(fn func()) Work {
	if fn == nil {
		return nil
	}
	return func(context.Context) error {
		fn()
		return nil
	}
}
