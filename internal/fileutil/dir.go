package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirMode is used for every directory created on behalf of a pidfile or log file.
const dirMode = 0o755

// EnsureDir creates path and any missing parents. Existing directories are left alone.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, dirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// EnsureDirForFile creates the directory that will contain filePath.
func EnsureDirForFile(filePath string) error {
	if err := EnsureDir(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", filePath, err)
	}
	return nil
}
