// Package stdio rebinds the process's standard streams to files. The daemon
// calls Redirect after both detach forks so no descriptor of the invoking
// terminal survives into the long-running process.
package stdio
