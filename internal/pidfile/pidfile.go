package pidfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/giantswarm/daemonize/internal/fileutil"
	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrInvalid is returned by Read when the file does not hold a positive decimal id.
const ErrInvalid = sentinel.Error("invalid pidfile content")

// ErrLocked is returned by Lock when another process holds the lock.
const ErrLocked = sentinel.Error("pidfile is locked by another process")

// Mode is the permission of a written pidfile.
const Mode os.FileMode = 0o644

// lockSuffix is appended to the pidfile path to name its lock file.
const lockSuffix = ".lock"

// Read returns the process id stored at path. A missing file is reported
// with an error matching fs.ErrNotExist.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller-configured pidfile path
	if err != nil {
		return 0, err
	}
	return Parse(data)
}

// Parse decodes pidfile content. Surrounding whitespace, including the
// trailing newline written by Write, is ignored.
func Parse(data []byte) (int, error) {
	s := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return pid, nil
}

// Write records pid at path, replacing any previous content.
func Write(path string, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("write pidfile %s: %w: %d", path, ErrInvalid, pid)
	}
	if err := fileutil.WriteAtomic(path, []byte(strconv.Itoa(pid)+"\n"), Mode); err != nil {
		return fmt.Errorf("write pidfile %s: %w", path, err)
	}
	return nil
}

// Remove deletes the pidfile. A file that is already gone is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove pidfile %s: %w", path, err)
	}
	return nil
}

// RemoveIfOwned deletes the pidfile only while it still records pid. A newer
// daemon that already replaced the file keeps it.
func RemoveIfOwned(path string, pid int) error {
	recorded, err := Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrInvalid) {
			return nil
		}
		return fmt.Errorf("read pidfile %s: %w", path, err)
	}
	if recorded != pid {
		return nil
	}
	return Remove(path)
}

// LockPath returns the lock file that guards the pidfile at path.
func LockPath(path string) string {
	return path + lockSuffix
}

// Lock takes the exclusive lock for the pidfile at path without blocking.
// The daemon keeps the returned lock until it exits; the kernel drops it when
// the process dies, however it dies. Returns ErrLocked when another live
// daemon holds it.
func Lock(path string) (*flock.Flock, error) {
	lockPath := LockPath(path)
	if err := fileutil.EnsureDirForFile(lockPath); err != nil {
		return nil, err
	}

	fl := flock.New(lockPath, flock.SetPermissions(Mode))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, ErrLocked)
	}
	return fl, nil
}

// Unlock releases a lock taken by Lock. The lock file stays on disk: removing
// it could split a concurrently acquired lock across two inodes.
func Unlock(logger *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		logger.Debug("failed to release pidfile lock", "path", fl.Path(), "error", err)
	}
}
