//go:build unix

package process

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// startChild starts a shell snippet and arranges for it to be killed and
// reaped when the test ends. It waits for the child to print "ready" so signal
// dispositions set by the snippet are in place before the test proceeds.
func startChild(t *testing.T, script string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("/bin/sh", "-c", script)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-done
	})

	line, err := bufio.NewReader(stdout).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ready" {
		t.Fatalf("child did not report ready: %q, %v", line, err)
	}
	return cmd
}

// reapedPID returns the pid of a child that has exited and been reaped.
func reapedPID(t *testing.T) int {
	t.Helper()
	cmd := exec.Command("/bin/sh", "-c", "exit 0")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run child: %v", err)
	}
	return cmd.Process.Pid
}

func TestAlive(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pid  func(t *testing.T) int
		want bool
	}{
		"self":     {pid: func(*testing.T) int { return os.Getpid() }, want: true},
		"zero":     {pid: func(*testing.T) int { return 0 }, want: false},
		"negative": {pid: func(*testing.T) int { return -1 }, want: false},
		"reaped":   {pid: reapedPID, want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Alive(tc.pid(t))
			if err != nil {
				t.Fatalf("Alive() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Alive() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAlive_ZombieCountsAsGone(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("/bin/sh", "-c", "exit 0")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}
	// The child stays a zombie until Wait, which runs only after the check.
	defer func() { _ = cmd.Wait() }()

	err := WaitGone(context.Background(), WaitConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "zombie",
	}, cmd.Process.Pid)
	if err != nil {
		t.Fatalf("zombie child should count as gone: %v", err)
	}
}

func TestStartedAt_Self(t *testing.T) {
	t.Parallel()

	started, err := StartedAt(os.Getpid())
	if err != nil {
		t.Fatalf("StartedAt() error: %v", err)
	}
	if started.After(time.Now()) {
		t.Errorf("start time %v is in the future", started)
	}
	if time.Since(started) > 24*time.Hour {
		t.Errorf("start time %v is implausibly old", started)
	}
}

func TestStartedAt_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := StartedAt(0); !errors.Is(err, ErrInvalidPID) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidPID)
	}
}

func TestSignal(t *testing.T) {
	t.Parallel()

	t.Run("reaped pid", func(t *testing.T) {
		t.Parallel()
		if err := Signal(reapedPID(t), 0); !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("invalid pid", func(t *testing.T) {
		t.Parallel()
		if err := Signal(0, 0); !errors.Is(err, ErrInvalidPID) {
			t.Fatalf("error = %v, want %v", err, ErrInvalidPID)
		}
	})

	t.Run("self probe", func(t *testing.T) {
		t.Parallel()
		if err := Signal(os.Getpid(), 0); err != nil {
			t.Fatalf("Signal(self, 0) error: %v", err)
		}
	})
}

func TestWaitGone_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     WaitConfig
		wantErr error
		wantMsg string
	}{
		"empty name":        {cfg: WaitConfig{Interval: time.Second, Timeout: time.Second}, wantMsg: "name must not be empty"},
		"zero interval":     {cfg: WaitConfig{Name: "d", Timeout: time.Second}, wantErr: ErrIntervalNotPositive},
		"negative interval": {cfg: WaitConfig{Name: "d", Interval: -time.Second, Timeout: time.Second}, wantErr: ErrIntervalNotPositive},
		"zero timeout":      {cfg: WaitConfig{Name: "d", Interval: time.Second}, wantErr: ErrTimeoutNotPositive},
		"negative timeout":  {cfg: WaitConfig{Name: "d", Interval: time.Second, Timeout: -time.Second}, wantErr: ErrTimeoutNotPositive},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := WaitGone(context.Background(), tc.cfg, os.Getpid())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantMsg != "" && !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tc.wantMsg)
			}
		})
	}
}

func TestWaitGone_Timeout(t *testing.T) {
	t.Parallel()

	start := time.Now()
	err := WaitGone(context.Background(), WaitConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  100 * time.Millisecond,
		Name:     "self",
	}, os.Getpid())
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("error = %v, want %v", err, ErrWaitTimeout)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("WaitGone took %v, expected to stop near its timeout", elapsed)
	}
}

func TestWaitGone_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitGone(ctx, WaitConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  time.Minute,
		Name:     "self",
	}, os.Getpid())
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if errors.Is(err, ErrWaitTimeout) {
		t.Errorf("canceled context must not be reported as timeout: %v", err)
	}
}

func TestWaitGone_AlreadyGone(t *testing.T) {
	t.Parallel()

	err := WaitGone(context.Background(), WaitConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
		Name:     "reaped",
	}, reapedPID(t))
	if err != nil {
		t.Fatalf("WaitGone() error: %v", err)
	}
}

func TestTerminate_GracefulExit(t *testing.T) {
	t.Parallel()
	cmd := startChild(t, "echo ready; exec sleep 30")

	killed, err := Terminate(context.Background(), cmd.Process.Pid, TerminateConfig{
		Name:        "sleep",
		StopTimeout: 5 * time.Second,
		Interval:    10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Terminate() error: %v", err)
	}
	if killed {
		t.Error("SIGTERM should have been enough")
	}
}

func TestTerminate_EscalatesToSIGKILL(t *testing.T) {
	t.Parallel()
	cmd := startChild(t, "trap '' TERM; echo ready; exec sleep 30")

	start := time.Now()
	killed, err := Terminate(context.Background(), cmd.Process.Pid, TerminateConfig{
		Name:        "stubborn",
		StopTimeout: 200 * time.Millisecond,
		KillTimeout: 5 * time.Second,
		Interval:    10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Terminate() error: %v", err)
	}
	if !killed {
		t.Error("expected escalation to SIGKILL")
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("escalated after %v, before the stop timeout", elapsed)
	}
}

func TestTerminate_AlreadyGone(t *testing.T) {
	t.Parallel()

	killed, err := Terminate(context.Background(), reapedPID(t), TerminateConfig{})
	if err != nil {
		t.Fatalf("Terminate() error: %v", err)
	}
	if killed {
		t.Error("no signal should have been escalated for a missing pid")
	}
}

func TestTerminate_InvalidPID(t *testing.T) {
	t.Parallel()

	if _, err := Terminate(context.Background(), 0, TerminateConfig{}); !errors.Is(err, ErrInvalidPID) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidPID)
	}
}

func TestTerminateConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := TerminateConfig{}.withDefaults()
	if cfg.Name != "process" {
		t.Errorf("Name = %q, want %q", cfg.Name, "process")
	}
	if cfg.StopTimeout != DefaultStopTimeout {
		t.Errorf("StopTimeout = %v, want %v", cfg.StopTimeout, DefaultStopTimeout)
	}
	if cfg.KillTimeout != DefaultKillTimeout {
		t.Errorf("KillTimeout = %v, want %v", cfg.KillTimeout, DefaultKillTimeout)
	}
	if cfg.Interval != DefaultPollInterval {
		t.Errorf("Interval = %v, want %v", cfg.Interval, DefaultPollInterval)
	}
	if cfg.Logger == nil {
		t.Error("Logger should default to non-nil")
	}
}

func TestSpawn(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	pid, err := Spawn(SpawnConfig{
		Path: "/bin/sh",
		Args: []string{"-c", `printf '%s %s' "$STAGE" "$(pwd)" > out`},
		Env:  []string{"STAGE=session"},
		Dir:  dir,
	})
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	if pid <= 0 {
		t.Fatalf("Spawn() pid = %d", pid)
	}

	err = WaitGone(context.Background(), WaitConfig{
		Interval: 10 * time.Millisecond,
		Timeout:  5 * time.Second,
		Name:     "spawned",
	}, pid)
	if err != nil {
		t.Fatalf("spawned child did not exit: %v", err)
	}

	got, err := os.ReadFile(out) //nolint:gosec // G304: test-controlled path
	if err != nil {
		t.Fatalf("read child output: %v", err)
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("eval symlinks: %v", err)
	}
	if want := "session " + realDir; string(got) != want {
		t.Errorf("child wrote %q, want %q", got, want)
	}
}

func TestSpawn_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		if _, err := Spawn(SpawnConfig{}); !errors.Is(err, ErrEmptyPath) {
			t.Fatalf("error = %v, want %v", err, ErrEmptyPath)
		}
	})

	t.Run("missing executable", func(t *testing.T) {
		t.Parallel()
		_, err := Spawn(SpawnConfig{Path: filepath.Join(t.TempDir(), "missing")})
		if err == nil {
			t.Fatal("expected error for a missing executable")
		}
	})
}
