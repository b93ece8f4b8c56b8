//go:build unix

package stdio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/daemonize/internal/fileutil"
	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrEmptyTarget is returned when one of the three targets is empty.
const ErrEmptyTarget = sentinel.Error("redirect target must not be empty")

// DefaultMode is the permission used when a log target has to be created.
const DefaultMode os.FileMode = 0o644

// Targets names the files the standard streams are bound to.
type Targets struct {
	Stdin  string // Opened read-only
	Stdout string // Opened for append, created if missing
	Stderr string // Opened for append, created if missing
	Mode   os.FileMode
}

// Files holds the opened targets.
type Files struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Close closes every non-nil handle.
func (f Files) Close() {
	for _, file := range []*os.File{f.Stdin, f.Stdout, f.Stderr} {
		if file != nil {
			_ = file.Close()
		}
	}
}

// Open opens all three targets. On failure nothing stays open.
func Open(t Targets) (Files, error) {
	if t.Stdin == "" || t.Stdout == "" || t.Stderr == "" {
		return Files{}, ErrEmptyTarget
	}
	mode := t.Mode
	if mode == 0 {
		mode = DefaultMode
	}

	var files Files
	var err error
	files.Stdin, err = os.Open(t.Stdin) //nolint:gosec // G304: caller-configured path
	if err != nil {
		return Files{}, fmt.Errorf("open stdin %s: %w", t.Stdin, err)
	}
	files.Stdout, err = fileutil.OpenAppend(t.Stdout, mode)
	if err != nil {
		files.Close()
		return Files{}, fmt.Errorf("open stdout: %w", err)
	}
	files.Stderr, err = fileutil.OpenAppend(t.Stderr, mode)
	if err != nil {
		files.Close()
		return Files{}, fmt.Errorf("open stderr: %w", err)
	}
	return files, nil
}

// Redirect flushes the current standard streams, then binds fds 0, 1 and 2
// to the targets. The previous descriptors are closed by dup2 itself. Every
// target is opened before the first fd is touched, so a failure leaves the
// streams as they were.
func Redirect(t Targets) error {
	files, err := Open(t)
	if err != nil {
		return err
	}
	defer files.Close()

	// Sync fails on terminals and pipes; there is nothing to flush there.
	_ = os.Stdout.Sync()
	_ = os.Stderr.Sync()

	return rebind(files, [3]int{unix.Stdin, unix.Stdout, unix.Stderr})
}

// rebind duplicates each opened file onto the matching descriptor number.
func rebind(files Files, fds [3]int) error {
	for i, src := range []*os.File{files.Stdin, files.Stdout, files.Stderr} {
		if err := unix.Dup2(int(src.Fd()), fds[i]); err != nil {
			return fmt.Errorf("dup2 %s onto fd %d: %w", src.Name(), fds[i], err)
		}
	}
	return nil
}
