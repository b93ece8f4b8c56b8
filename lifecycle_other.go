//go:build !unix

package daemonize

import "context"

// Start reports ErrUnsupported.
func (d *Daemon) Start() error {
	return ErrUnsupported
}

// Stop reports ErrUnsupported.
func (d *Daemon) Stop(context.Context) error {
	return ErrUnsupported
}

// Restart reports ErrUnsupported.
func (d *Daemon) Restart(context.Context) error {
	return ErrUnsupported
}

// Status reports ErrUnsupported.
func (d *Daemon) Status() (Status, error) {
	return Status{}, ErrUnsupported
}
