// Package pidfile reads and writes the file that records a daemon's process
// id, and manages the companion lock file the running daemon holds for its
// whole lifetime.
//
// The pidfile holds exactly one decimal process id followed by a newline.
// Writes go through a temp file and a rename so a concurrent reader never sees
// a partial id.
package pidfile
