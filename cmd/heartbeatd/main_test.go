package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"

	"github.com/giantswarm/daemonize/internal/config"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestHeartbeat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	if err := heartbeat(&buf, 10*time.Millisecond)(ctx); err != nil {
		t.Fatalf("heartbeat() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("got %d heartbeat lines, want at least 2:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, " heartbeat pid=") {
			t.Errorf("unexpected line %q", line)
		}
	}
}

func TestHeartbeat_WriteError(t *testing.T) {
	t.Parallel()

	err := heartbeat(failingWriter{}, time.Hour)(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("heartbeat() error = %v, want the write error", err)
	}
}

// Not parallel: points the XDG directories at temp dirs.
func TestConfigCommand(t *testing.T) {
	t.Cleanup(xdg.Reload)
	runtimeDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	t.Setenv("HEARTBEATD_INTERVAL", "")
	xdg.Reload()

	envFile := filepath.Join(t.TempDir(), "heartbeatd.env")
	if err := os.WriteFile(envFile, []byte("HEARTBEATD_INTERVAL=3s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	a := &app{name: appName, stdout: &bytes.Buffer{}}
	root := newRootCommand(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "--env-file", envFile})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out.String())
	}

	path := filepath.Join(t.TempDir(), "effective.toml")
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(config.Source{App: appName, ConfigFile: path})
	if err != nil {
		t.Fatalf("printed config does not load back: %v\n%s", err, out.String())
	}
	if time.Duration(cfg.Interval) != 3*time.Second {
		t.Errorf("interval = %s, want 3s from the env file", time.Duration(cfg.Interval))
	}
	if want := filepath.Join(runtimeDir, appName, appName+".pid"); cfg.PidFile != want {
		t.Errorf("pidfile = %q, want %q", cfg.PidFile, want)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	t.Setenv("HEARTBEATD_PIDFILE", "")
	xdg.Reload()

	a := &app{name: appName, stdout: &bytes.Buffer{}}
	root := newRootCommand(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"status"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out.String())
	}
	if got := out.String(); got != "heartbeatd: not running\n" {
		t.Errorf("status output = %q", got)
	}
}
