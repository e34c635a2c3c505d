package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/sqlfixture/internal/alerr"
	"github.com/hlop3z/sqlfixture/pkg/sqlfixture"
)

const defaultConfigFile = "sqlfix.yaml"

// Config represents the sqlfix.yaml configuration file.
type Config struct {
	LogLevel  string           `yaml:"log_level"`
	Timeout   string           `yaml:"timeout"`
	Databases []DatabaseConfig `yaml:"databases"`

	// Path is the file the config was read from, empty if none was found.
	Path string `yaml:"-"`
	// timeout is Timeout parsed.
	timeout time.Duration
}

// DatabaseConfig is one named connection opened at startup.
type DatabaseConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Driver   string `yaml:"driver"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
//
// A missing config file is fine unless it was named explicitly with
// --config or SQLFIX_CONFIG.
func loadConfig() (*Config, error) {
	cfg := &Config{LogLevel: "info"}

	path, explicit := configFile, configFile != ""
	if !explicit {
		if env := os.Getenv("SQLFIX_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = defaultConfigFile
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeConfig(data, cfg); err != nil {
			return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "failed to parse config file").
				WithFile(path, 0)
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file: flags and env only.
	default:
		return nil, alerr.Wrap(alerr.ErrConfigRead, err, "failed to read config file").
			WithFile(path, 0)
	}

	for i := range cfg.Databases {
		db := &cfg.Databases[i]
		db.URL = expandEnvVars(db.URL)
		db.Username = expandEnvVars(db.Username)
		db.Password = expandEnvVars(db.Password)
	}

	if env := os.Getenv("SQLFIX_LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
	if env := os.Getenv("SQLFIX_TIMEOUT"); env != "" {
		cfg.Timeout = env
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if timeout > 0 {
		cfg.Timeout = timeout.String()
	}

	if err := cfg.validate(); err != nil {
		if cfg.Path != "" {
			err.WithFile(cfg.Path, 0)
		}
		return nil, err
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// validate checks names, URLs and the timeout, and parses the timeout.
func (c *Config) validate() *alerr.Error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return alerr.Newf(alerr.ErrConfigInvalid, "invalid log level %q", c.LogLevel).
			WithHelp("use one of debug, info, warn, error")
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil || d < 0 {
			return alerr.Newf(alerr.ErrConfigInvalid, "invalid timeout %q", c.Timeout).
				WithHelp("use a Go duration such as 30s or 2m")
		}
		c.timeout = d
	}

	seen := make(map[string]bool, len(c.Databases))
	for i, db := range c.Databases {
		switch {
		case strings.TrimSpace(db.Name) == "":
			return alerr.Newf(alerr.ErrConfigInvalid, "database #%d has no name", i+1)
		case strings.TrimSpace(db.URL) == "":
			return alerr.Newf(alerr.ErrConfigInvalid, "database %q has no url", db.Name).
				WithDatabase(db.Name)
		case seen[db.Name]:
			return alerr.Newf(alerr.ErrConfigInvalid, "database %q is declared twice", db.Name).
				WithDatabase(db.Name)
		}
		seen[db.Name] = true
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TimeoutDuration returns the parsed per-call timeout (0 means none).
func (c *Config) TimeoutDuration() time.Duration {
	return c.timeout
}

// Params converts the entry to fixture connection parameters.
func (d DatabaseConfig) Params() sqlfixture.ConnectionParams {
	return sqlfixture.ConnectionParams{
		URL:      d.URL,
		Driver:   d.Driver,
		Username: d.Username,
		Password: d.Password,
	}
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// newLogger builds the stderr logger for cfg.
func newLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// newFixture creates a fixture and connects every configured database.
// On failure the databases connected so far are closed again.
func newFixture(ctx context.Context, cfg *Config, logger *slog.Logger) (*sqlfixture.Fixture, error) {
	fx := sqlfixture.New(
		sqlfixture.WithLogger(logger),
		sqlfixture.WithTimeout(cfg.TimeoutDuration()),
	)

	for _, db := range cfg.Databases {
		if err := fx.Connect(ctx, db.Name, db.Params()); err != nil {
			_ = fx.Close()
			return nil, err
		}
	}
	return fx, nil
}
