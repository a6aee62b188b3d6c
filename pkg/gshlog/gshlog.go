// Package gshlog configures the shared zerolog logger used by the
// server and client binaries.
package gshlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a pretty-printed console-writer zerolog.Logger at the
// given level.
func New(level zerolog.Level, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// ParseLevel wraps zerolog.ParseLevel, falling back to InfoLevel on an
// empty or unrecognized string so a missing GSH_LOG_LEVEL env var is
// not a startup error.
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
