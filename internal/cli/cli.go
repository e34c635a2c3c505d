// Package cli renders sqlfix output: colored diagnostics on terminals,
// plain text in pipes and JSON when --json is given.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode selects how command output is rendered.
type OutputMode int

const (
	ModeTTY OutputMode = iota
	ModePlain
	ModeJSON
)

// Config is the output configuration shared by every command.
type Config struct {
	Mode OutputMode
}

// NewConfig returns a configuration fixed to mode.
func NewConfig(mode OutputMode) *Config {
	return &Config{Mode: mode}
}

// DetectMode picks the output mode for a command writing to out.
// The --json flag always wins. Colors need a terminal on out, an empty
// NO_COLOR (https://no-color.org/) and a TERM other than dumb.
func DetectMode(out io.Writer, jsonFlag bool) OutputMode {
	if jsonFlag {
		return ModeJSON
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return ModePlain
	}
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return ModePlain
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ModeTTY
	}
	return ModePlain
}

func (c *Config) IsTTY() bool  { return c.Mode == ModeTTY }
func (c *Config) IsJSON() bool { return c.Mode == ModeJSON }

var defaultCfg *Config

// Default returns the configuration installed by SetDefault, falling back
// to detection on stdout.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = NewConfig(DetectMode(os.Stdout, false))
	}
	return defaultCfg
}

// SetDefault installs cfg for all output helpers. nil restores detection.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors reports whether styled output should carry ANSI codes.
func EnableColors() bool {
	return Default().IsTTY()
}
