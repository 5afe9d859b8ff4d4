// ABOUTME: Builds the structured diagnostic logger used across the app.
// ABOUTME: User-facing output stays on fatih/color; this goes to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel overrides the level when --verbose is not set.
const EnvLevel = "MEASURE_LOG_LEVEL"

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// FromEnv builds the CLI logger. verbose forces debug; otherwise the level
// comes from MEASURE_LOG_LEVEL and defaults to warn so normal runs stay quiet.
func FromEnv(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if v := os.Getenv(EnvLevel); v != "" {
		if l, err := ParseLevel(v); err == nil {
			level = l
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	return New(os.Stderr, level)
}

// Nop discards everything.
func Nop() *slog.Logger {
	return New(io.Discard, slog.LevelError)
}
