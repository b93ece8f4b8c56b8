//go:build unix

package daemonize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/giantswarm/daemonize/internal/pidfile"
	"github.com/giantswarm/daemonize/internal/process"
)

// Start daemonizes the calling program and runs the work function in the
// detached process.
//
// In the invoking process Start refuses with ErrAlreadyRunning when the
// pidfile names a live process, otherwise it spawns the first detachment
// stage and exits with status 0. A stale pidfile does not block a start; the
// new daemon overwrites it.
//
// In the re-executed stages Start continues the protocol and exits the
// process when its stage is done. In the daemon stage that is when the work
// function returns: status 0 on success, 1 on error. A termination signal
// ends the daemon with the signal's default action once the work function
// has returned or the shutdown grace period has elapsed.
//
// Start therefore returns only on failure in the invoking process.
func (d *Daemon) Start() error {
	switch s := currentStage(); s {
	case stageCaller:
		return d.startCaller()
	case stageSession:
		d.exit(d.runSession())
	case stageDaemon:
		d.exit(d.runDaemon())
	default:
		return fmt.Errorf("start: unknown %s value %q", StageEnv, s)
	}
	return nil
}

func (d *Daemon) startCaller() error {
	log := Logger()

	st, err := d.Status()
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if st.Running {
		return fmt.Errorf("start: %w (pid %d)", ErrAlreadyRunning, st.PID)
	}
	if st.Stale {
		log.Info("ignoring stale pidfile", "pidfile", d.cfg.PidFile, "pid", st.PID)
	}

	pid, err := d.spawnStage(stageSession)
	if err != nil {
		return fmt.Errorf("start: %w: %w", ErrForkFailed, err)
	}
	log.Debug("spawned session stage", "pid", pid)

	d.exit(exitOK)
	return nil
}

// Stop terminates the daemon named by the pidfile and removes the pidfile.
//
// The daemon gets SIGTERM first. If it is still alive after the stop
// timeout it gets SIGKILL; if it survives the kill timeout as well Stop
// returns ErrStopTimeout. ctx bounds the whole operation.
//
// Stop returns ErrNotRunning, and touches nothing, when the pidfile is
// missing, invalid, or names a process that is gone.
func (d *Daemon) Stop(ctx context.Context) error {
	log := Logger()

	st, err := d.Status()
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if !st.Running {
		return fmt.Errorf("stop %s: %w", d.cfg.PidFile, ErrNotRunning)
	}

	log.Info("stopping daemon", "pid", st.PID, "pidfile", d.cfg.PidFile)
	killed, err := process.Terminate(ctx, st.PID, process.TerminateConfig{
		Name:        "daemon",
		StopTimeout: d.cfg.StopTimeout,
		KillTimeout: d.cfg.KillTimeout,
		Interval:    d.cfg.PollInterval,
		Logger:      log,
	})
	if err != nil {
		if errors.Is(err, process.ErrStillAlive) {
			return fmt.Errorf("stop pid %d: %w: %w", st.PID, ErrStopTimeout, err)
		}
		return fmt.Errorf("stop pid %d: %w", st.PID, err)
	}
	if killed {
		log.Warn("daemon was killed", "pid", st.PID)
	}

	// A daemon that handled SIGTERM removed its own pidfile. One that was
	// killed could not.
	if err := pidfile.RemoveIfOwned(d.cfg.PidFile, st.PID); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	log.Info("daemon stopped", "pid", st.PID)
	return nil
}

// Restart stops the daemon if it is running and starts it again. A daemon
// that is not running is simply started. Like Start, Restart returns only
// on failure.
//
// In the re-executed stages Restart only resumes Start.
func (d *Daemon) Restart(ctx context.Context) error {
	if currentStage() == stageCaller {
		if err := d.Stop(ctx); err != nil && !errors.Is(err, ErrNotRunning) {
			return fmt.Errorf("restart: %w", err)
		}
	}
	return d.Start()
}

// Status inspects the pidfile and the process it names.
func (d *Daemon) Status() (Status, error) {
	pid, err := pidfile.Read(d.cfg.PidFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Status{}, nil
	case errors.Is(err, pidfile.ErrInvalid):
		return Status{Stale: true}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read pidfile: %w", err)
	}

	alive, err := process.Alive(pid)
	if err != nil {
		return Status{PID: pid}, fmt.Errorf("check pid %d: %w", pid, err)
	}
	if !alive {
		return Status{PID: pid, Stale: true}, nil
	}

	st := Status{Running: true, PID: pid}
	if started, err := process.StartedAt(pid); err == nil {
		st.StartedAt = started
	}
	return st, nil
}
