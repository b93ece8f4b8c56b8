//go:build unix

package daemonize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/giantswarm/daemonize/internal/pidfile"
	"github.com/giantswarm/daemonize/internal/process"
	"github.com/giantswarm/daemonize/internal/stdio"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// terminationSignals trigger the cooperative stop in the daemon stage.
var terminationSignals = []os.Signal{unix.SIGTERM, unix.SIGINT}

// spawnStage re-executes the program in stage next. Stderr is inherited so
// failures before the daemon redirects its streams reach the terminal.
func (d *Daemon) spawnStage(next stage) (int, error) {
	return process.Spawn(process.SpawnConfig{
		Path:   d.cfg.Executable,
		Args:   d.cfg.Args,
		Env:    stageEnviron(os.Environ(), next),
		Stderr: os.Stderr,
	})
}

// runSession is the first child: it leaves the caller's session and spawns
// the daemon, which is then not a session leader and can never acquire a
// controlling terminal.
func (d *Daemon) runSession() int {
	log := Logger()

	if _, err := process.NewSession(); err != nil {
		log.Error("failed to detach from terminal", "error", fmt.Errorf("%w: %w", ErrSessionFailed, err))
		return exitFailure
	}

	pid, err := d.spawnStage(stageDaemon)
	if err != nil {
		log.Error("failed to spawn daemon", "error", fmt.Errorf("%w: %w", ErrForkFailed, err))
		return exitFailure
	}
	log.Debug("spawned daemon stage", "pid", pid)
	return exitOK
}

// runDaemon prepares the detached process and runs the work function.
func (d *Daemon) runDaemon() int {
	log := Logger()

	if err := os.Unsetenv(StageEnv); err != nil {
		log.Warn("failed to clear stage marker", "error", err)
	}
	signal.Ignore(unix.SIGHUP)

	if err := os.Chdir(d.cfg.WorkDir); err != nil {
		log.Error("failed to change working directory", "dir", d.cfg.WorkDir, "error", err)
		return exitFailure
	}
	unix.Umask(d.cfg.Umask)

	err := stdio.Redirect(stdio.Targets{
		Stdin:  d.cfg.Stdin,
		Stdout: d.cfg.Stdout,
		Stderr: d.cfg.Stderr,
		Mode:   d.cfg.FileMode,
	})
	if err != nil {
		log.Error("failed to redirect standard streams", "error", fmt.Errorf("%w: %w", ErrRedirectFailed, err))
		return exitFailure
	}

	// From here on stderr is the configured file.
	lock, err := pidfile.Lock(d.cfg.PidFile)
	if err != nil {
		if errors.Is(err, pidfile.ErrLocked) {
			err = fmt.Errorf("%w: %w", ErrAlreadyRunning, err)
		}
		log.Error("failed to lock pidfile", "pidfile", d.cfg.PidFile, "error", err)
		return exitFailure
	}
	defer pidfile.Unlock(log, lock)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, terminationSignals...)
	defer signal.Stop(sigs)

	pid := os.Getpid()
	removePidfile := sync.OnceFunc(func() {
		if err := pidfile.RemoveIfOwned(d.cfg.PidFile, pid); err != nil {
			log.Warn("failed to remove pidfile", "pidfile", d.cfg.PidFile, "error", err)
		}
	})
	defer removePidfile()

	if err := pidfile.Write(d.cfg.PidFile, pid); err != nil {
		log.Error("failed to write pidfile", "pidfile", d.cfg.PidFile, "error", err)
		return exitFailure
	}
	log.Info("daemon started", "pid", pid, "pidfile", d.cfg.PidFile)

	return d.serve(sigs, removePidfile)
}

// serve runs the work function next to a watcher for termination signals.
//
// On a signal the watcher cancels the work context, runs the before-stop
// hook, removes the pidfile, and arms the shutdown grace timer. When the work
// function returns after a signal the process terminates with that signal.
func (d *Daemon) serve(sigs <-chan os.Signal, removePidfile func()) int {
	log := Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Both are written inside the group and read after Wait.
	var (
		received os.Signal
		panicked any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case sig := <-sigs:
			received = sig
			log.Info("received termination signal", "signal", sig)
			cancel()
			if d.cfg.BeforeStop != nil {
				d.cfg.BeforeStop()
			}
			removePidfile()
			time.AfterFunc(d.cfg.ShutdownGrace, func() {
				log.Warn("work did not return within shutdown grace", "grace", d.cfg.ShutdownGrace)
				d.reraise(sig)
			})
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() (err error) {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				panicked = r
				log.Error("work panicked", "panic", r)
				err = fmt.Errorf("work panicked: %v", r)
			}
		}()
		return d.work(gctx)
	})
	err := g.Wait()

	removePidfile()
	if panicked != nil {
		panic(panicked)
	}
	if received != nil {
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("work returned an error during shutdown", "error", err)
		}
		log.Info("daemon stopped", "signal", received)
		d.reraise(received)
		return exitFailure
	}
	if err != nil {
		log.Error("work failed", "error", err)
		return exitFailure
	}
	log.Info("work finished")
	return exitOK
}

// reraise ends the process with the default action of sig.
func (d *Daemon) reraise(sig os.Signal) {
	signal.Reset(sig)
	s, ok := sig.(unix.Signal)
	if !ok {
		d.exit(exitFailure)
		return
	}
	if err := unix.Kill(os.Getpid(), s); err == nil {
		// Delivery is asynchronous.
		time.Sleep(time.Second)
	}
	d.exit(128 + int(s))
}
