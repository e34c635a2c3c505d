package sqlfixture

import (
	"log/slog"
	"time"
)

// Config holds all configuration options for the Fixture.
type Config struct {
	// Logger receives connect, disconnect and execute events.
	// If nil, nothing is logged.
	Logger *slog.Logger

	// Timeout bounds every connect, execute and ping call.
	// Default: 0 (no deadline beyond the caller's context and the driver's own).
	Timeout time.Duration
}

// Option is a functional option for configuring the Fixture.
type Option func(*Config)

// WithLogger sets the structured logger for the fixture.
// If not set, no logging is performed.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTimeout sets a per-call deadline for database operations.
// Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

func applyOptions(opts []Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
