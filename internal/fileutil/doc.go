// Package fileutil holds the small file helpers shared by the pidfile and
// stream redirection code: directory creation, atomic replace-by-rename writes,
// and append-mode opens for log files.
package fileutil
