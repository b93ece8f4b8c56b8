package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func requireDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", path)
	}
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	tests := map[string]func(base string) string{
		"new directory":      func(base string) string { return filepath.Join(base, "run") },
		"nested directories": func(base string) string { return filepath.Join(base, "var", "run", "app") },
		"existing directory": func(base string) string { return base },
	}

	for name, dirFor := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := dirFor(t.TempDir())

			if err := EnsureDir(dir); err != nil {
				t.Fatalf("EnsureDir() error: %v", err)
			}
			requireDir(t, dir)
		})
	}
}

func TestEnsureDir_PathIsFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := EnsureDir(filepath.Join(path, "sub")); err == nil {
		t.Fatal("expected error when a parent is a regular file")
	}
}

func TestEnsureDirForFile(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"direct parent": "app.pid",
		"nested parent": filepath.Join("run", "app", "app.pid"),
	}

	for name, rel := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			filePath := filepath.Join(t.TempDir(), rel)

			if err := EnsureDirForFile(filePath); err != nil {
				t.Fatalf("EnsureDirForFile() error: %v", err)
			}
			requireDir(t, filepath.Dir(filePath))

			if _, err := os.Stat(filePath); !os.IsNotExist(err) {
				t.Errorf("EnsureDirForFile must not create the file itself, stat err = %v", err)
			}
		})
	}
}
