// Package logging builds the zerolog loggers shared by the game binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewConsole returns a human-readable logger on stderr, used by the
// server binaries whose stdout is not a game screen.
func NewConsole(level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return New(cw, level)
}

// NewFile opens (or creates) path for appending and returns a logger on it.
// The terminal game needs this since the screen is in raw mode.
func NewFile(path, level string) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, level), f, nil
}

// Component derives a logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
