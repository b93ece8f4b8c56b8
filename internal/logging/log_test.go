package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// Not parallel: the tests swap the package-level logger.

func TestLogger_DefaultHasComponent(t *testing.T) {
	SetLogger(nil)
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	SetLogger(nil)

	Logger().Info("hello")
	if got := buf.String(); !strings.Contains(got, "component=daemonize") {
		t.Errorf("log line %q lacks component attribute", got)
	}
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)

	if Logger() != custom {
		t.Fatal("Logger() did not return the installed logger")
	}
	Logger().Info("custom")
	if !strings.Contains(buf.String(), "msg=custom") {
		t.Errorf("custom logger did not receive the record: %q", buf.String())
	}

	SetLogger(nil)
	if Logger() == custom {
		t.Error("SetLogger(nil) should restore the default logger")
	}
}

func TestLogger_CachesDefault(t *testing.T) {
	SetLogger(nil)
	t.Cleanup(func() { SetLogger(nil) })

	if Logger() != Logger() {
		t.Error("default logger should be cached between calls")
	}
}
