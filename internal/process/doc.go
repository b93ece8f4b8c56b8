// Package process wraps the OS process primitives the daemon lifecycle needs:
// liveness probes for a recorded pid, the SIGTERM-then-SIGKILL stop sequence
// with bounded polling, session creation, and re-execution of the running
// program for each detach stage.
//
// Every pid handled here is an arbitrary process id read from a pidfile, not a
// child of the caller, so nothing in this package calls wait(2) on it.
package process
