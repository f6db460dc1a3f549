// Package logging provides structured logging for go-analysis-console.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a structured logger writing to stderr.
// Format is "text" or "json"; verbose forces debug level.
func New(format string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return NewWithWriter(os.Stderr, format, level)
}

// NewWithWriter creates a logger writing to w. Useful for tests and for
// discarding output while the dashboard owns the terminal.
func NewWithWriter(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything. The dashboard uses it so
// log lines never tear the rendered screen.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
