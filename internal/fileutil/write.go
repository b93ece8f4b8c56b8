package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrEmptyPath is returned when a helper is called with an empty path.
const ErrEmptyPath = sentinel.Error("path must not be empty")

// WriteAtomic replaces path with data. The data is written to a temporary file
// in the same directory, synced, and renamed over path, so readers observe
// either the previous content or the complete new content.
func WriteAtomic(path string, data []byte, mode os.FileMode) (retErr error) {
	if path == "" {
		return ErrEmptyPath
	}
	if err := EnsureDirForFile(path); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	// CreateTemp always uses 0600; the final file gets the caller's mode.
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}

// OpenAppend opens path for appending, creating it (and its directory) with
// mode if it does not exist yet.
func OpenAppend(path string, mode os.FileMode) (*os.File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := EnsureDirForFile(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, mode) //nolint:gosec // G304: caller-configured log path
	if err != nil {
		return nil, fmt.Errorf("open %s for append: %w", path, err)
	}
	return f, nil
}
