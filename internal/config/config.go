// Package config loads the settings of an example daemon from defaults, a
// TOML file, a .env file, and the environment, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/giantswarm/daemonize"
	"github.com/giantswarm/daemonize/internal/sentinel"
)

// ErrInvalid wraps configuration values that cannot be used.
const ErrInvalid = sentinel.Error("invalid configuration")

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// UnmarshalText parses strings such as "1.5s".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the file and environment representation of a daemon.
type Config struct {
	PidFile     string   `toml:"pidfile"`
	Stdin       string   `toml:"stdin"`
	Stdout      string   `toml:"stdout"`
	Stderr      string   `toml:"stderr"`
	WorkDir     string   `toml:"workdir"`
	Interval    Duration `toml:"interval"`
	StopTimeout Duration `toml:"stop_timeout"`
}

// Source says where Load looks for settings.
type Source struct {
	// App names the daemon. It selects the XDG subdirectory and, upper-cased,
	// the environment prefix (APP_PIDFILE, ...).
	App string

	// ConfigFile is an explicit TOML file. When empty, <App>/config.toml is
	// searched in the XDG config directories and skipped if absent.
	ConfigFile string

	// EnvFile is an optional .env file. Variables already set in the
	// environment take precedence over it.
	EnvFile string
}

// Defaults returns the configuration used when nothing else sets a value.
// The pidfile lives in the XDG runtime directory, or the temp directory when
// that does not exist, and the logs in the XDG state directory. Nothing is
// created here: the daemon creates parent directories when it opens the files.
func Defaults(app string) (Config, error) {
	runtimeDir := xdg.RuntimeDir
	if info, err := os.Stat(runtimeDir); err != nil || !info.IsDir() {
		runtimeDir = os.TempDir()
	}
	stateDir := filepath.Join(xdg.StateHome, app)

	return Config{
		PidFile:     filepath.Join(runtimeDir, app, app+".pid"),
		Stdin:       daemonize.DefaultStdin,
		Stdout:      filepath.Join(stateDir, app+".log"),
		Stderr:      filepath.Join(stateDir, app+".err"),
		WorkDir:     daemonize.DefaultWorkDir,
		Interval:    Duration(time.Second),
		StopTimeout: Duration(daemonize.DefaultStopTimeout),
	}, nil
}

// Load resolves the configuration described by src.
func Load(src Source) (Config, error) {
	if src.App == "" {
		return Config{}, fmt.Errorf("%w: app name must not be empty", ErrInvalid)
	}
	cfg, err := Defaults(src.App)
	if err != nil {
		return Config{}, err
	}

	path := src.ConfigFile
	if path == "" {
		if found, err := xdg.SearchConfigFile(filepath.Join(src.App, "config.toml")); err == nil {
			path = found
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookup := os.LookupEnv
	if src.EnvFile != "" {
		fileEnv, err := godotenv.Read(src.EnvFile)
		if err != nil {
			return Config{}, fmt.Errorf("read env file %s: %w", src.EnvFile, err)
		}
		lookup = func(key string) (string, bool) {
			if v, ok := os.LookupEnv(key); ok && v != "" {
				return v, true
			}
			v, ok := fileEnv[key]
			return v, ok
		}
	}
	if err := applyEnv(&cfg, envPrefix(src.App), lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s: %s", ErrInvalid, path, strict.String())
		}
		return fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	return nil
}

func envPrefix(app string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(app)) + "_"
}

// applyEnv overrides cfg with PREFIX_<KEY> variables.
func applyEnv(cfg *Config, prefix string, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"PIDFILE": &cfg.PidFile,
		"STDIN":   &cfg.Stdin,
		"STDOUT":  &cfg.Stdout,
		"STDERR":  &cfg.Stderr,
		"WORKDIR": &cfg.WorkDir,
	}
	for key, dst := range strs {
		if v, ok := lookup(prefix + key); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*Duration{
		"INTERVAL":     &cfg.Interval,
		"STOP_TIMEOUT": &cfg.StopTimeout,
	}
	for key, dst := range durations {
		v, ok := lookup(prefix + key)
		if !ok || v == "" {
			continue
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalid, prefix, key, err)
		}
	}
	return nil
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	for name, v := range map[string]string{
		"pidfile": c.PidFile,
		"stdin":   c.Stdin,
		"stdout":  c.Stdout,
		"stderr":  c.Stderr,
		"workdir": c.WorkDir,
	} {
		if v == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalid, name)
		}
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalid, time.Duration(c.Interval))
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("%w: stop_timeout must be positive, got %s", ErrInvalid, time.Duration(c.StopTimeout))
	}
	return nil
}

// DaemonOptions translates c into options for daemonize.New. c must be valid.
func (c Config) DaemonOptions() []daemonize.Option {
	return []daemonize.Option{
		daemonize.WithStdin(c.Stdin),
		daemonize.WithStdout(c.Stdout),
		daemonize.WithStderr(c.Stderr),
		daemonize.WithWorkDir(c.WorkDir),
		daemonize.WithStopTimeout(time.Duration(c.StopTimeout)),
	}
}

// Encode writes c as TOML.
func Encode(w io.Writer, c Config) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
