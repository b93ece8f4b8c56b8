package daemonize

import (
	"os"
	"time"
)

// ConfigSnapshot holds a copy of config fields for test assertions.
type ConfigSnapshot struct {
	PidFile       string
	Stdin         string
	Stdout        string
	Stderr        string
	WorkDir       string
	Umask         int
	FileMode      os.FileMode
	StopTimeout   time.Duration
	KillTimeout   time.Duration
	PollInterval  time.Duration
	ShutdownGrace time.Duration
	HasBeforeStop bool
	Executable    string
	Args          []string
}

func snapshot(cfg config) ConfigSnapshot {
	return ConfigSnapshot{
		PidFile:       cfg.PidFile,
		Stdin:         cfg.Stdin,
		Stdout:        cfg.Stdout,
		Stderr:        cfg.Stderr,
		WorkDir:       cfg.WorkDir,
		Umask:         cfg.Umask,
		FileMode:      cfg.FileMode,
		StopTimeout:   cfg.StopTimeout,
		KillTimeout:   cfg.KillTimeout,
		PollInterval:  cfg.PollInterval,
		ShutdownGrace: cfg.ShutdownGrace,
		HasBeforeStop: cfg.BeforeStop != nil,
		Executable:    cfg.Executable,
		Args:          cfg.Args,
	}
}

// ApplyOptionsForTesting applies opts to the default config without
// resolving paths.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultConfig("daemon.pid")
	for _, opt := range opts {
		opt(&cfg)
	}
	return snapshot(cfg)
}

// ConfigForTesting returns the resolved config of d.
func ConfigForTesting(d *Daemon) ConfigSnapshot {
	return snapshot(d.cfg)
}
