// Package daemonize turns the calling program into a classic Unix daemon.
//
// A daemon is detached from the invoking terminal with the double-fork
// protocol, works from a known directory and umask, has its standard streams
// bound to files, and records its pid in a pidfile so later invocations can
// find, stop, or restart it.
//
// The Go runtime cannot fork a running process, so each fork is a
// re-execution of the current program with a stage marker in its environment
// (see StageEnv). Every stage runs main again and reaches Daemon.Start, which
// resumes the protocol where the previous stage left it:
//
//	caller   check the pidfile, spawn the session stage, exit 0
//	session  setsid, spawn the daemon stage, exit 0
//	daemon   chdir, umask, redirect stdio, lock, write pidfile, run work
//
// Because of this, everything main does before Start runs three times. Keep
// it side-effect free and deterministic, and call Start before doing real work.
//
// Basic usage:
//
//	d, err := daemonize.New("/run/mydaemon.pid", work,
//	    daemonize.WithStdout("/var/log/mydaemon.log"),
//	    daemonize.WithStderr("/var/log/mydaemon.err"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// The work function receives a context that is cancelled when the daemon
// receives SIGTERM or SIGINT. It should return promptly once the context is
// done; after the shutdown grace period the process is terminated anyway.
//
// The cli sub-package wires a Daemon to start, stop, restart and status
// commands.
package daemonize
