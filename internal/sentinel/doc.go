// Package sentinel provides a string-backed error type that can be declared
// as a const. The daemonize packages use it for every error a caller may want
// to match with errors.Is (already running, not running, fork failures).
package sentinel
