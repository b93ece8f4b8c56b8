package daemonize

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// config holds the settings of a Daemon. Option functions write to it and
// New validates it.
type config struct {
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
	BeforeStop    func()
	Executable    string
	Args          []string

	argsSet bool
}

func defaultConfig(pidFile string) config {
	return config{
		PidFile:       pidFile,
		Stdin:         DefaultStdin,
		Stdout:        DefaultStdout,
		Stderr:        DefaultStderr,
		WorkDir:       DefaultWorkDir,
		Umask:         DefaultUmask,
		FileMode:      DefaultFileMode,
		StopTimeout:   DefaultStopTimeout,
		KillTimeout:   DefaultKillTimeout,
		PollInterval:  DefaultPollInterval,
		ShutdownGrace: DefaultShutdownGrace,
	}
}

// Daemon controls one daemon identified by its pidfile.
//
// The same Daemon value, built with the same arguments, must be constructed
// in every detachment stage. A Daemon is safe for concurrent use by the
// control operations (Stop, Status); Start and Restart end the calling
// process on success.
type Daemon struct {
	cfg  config
	work Work

	// exit ends a stage. Replaced in tests.
	exit func(code int)
}

// New returns a Daemon that runs work under the pidfile at pidFile.
//
// Relative paths are resolved against the current directory now, because the
// daemon stage changes its working directory before opening any of them.
func New(pidFile string, work Work, opts ...Option) (*Daemon, error) {
	if pidFile == "" {
		return nil, ErrEmptyPidfile
	}
	if work == nil {
		return nil, ErrNilWork
	}

	cfg := defaultConfig(pidFile)
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:  cfg,
		work: work,
		exit: os.Exit,
	}, nil
}

// PidFile returns the absolute path of the daemon's pidfile.
func (d *Daemon) PidFile() string {
	return d.cfg.PidFile
}

// resolve makes every path absolute and fills in the re-exec command.
func (c *config) resolve() error {
	for name, p := range map[string]*string{
		"pidfile":  &c.PidFile,
		"stdin":    &c.Stdin,
		"stdout":   &c.Stdout,
		"stderr":   &c.Stderr,
		"work dir": &c.WorkDir,
	} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", name, *p, err)
		}
		*p = abs
	}

	if c.Executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}
		c.Executable = exe
	}
	if !c.argsSet && len(os.Args) > 1 {
		c.Args = append([]string(nil), os.Args[1:]...)
	}
	return nil
}
