// Package obslog builds the process logger. It avoids any
// module-level zerolog.SetGlobalLevel/log.Logger mutation, building loggers
// constructed per component and threaded through constructors, so no
// package carries mutable global state.
package obslog

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls how loggers are built.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // "json" or "console"
	Output io.Writer
}

// New builds a root logger from cfg. Pass it down through every
// constructor in the program; nothing in this repository reaches for a
// package-level logger.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Component returns a child logger tagged with the owning component name.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

// Agent returns a child logger tagged with an agent's name and role.
func Agent(base zerolog.Logger, name, role string) zerolog.Logger {
	return base.With().Str("agent", name).Str("role", role).Logger()
}
