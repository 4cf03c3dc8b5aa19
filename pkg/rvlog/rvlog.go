// Package rvlog provides the structured logging used across the rv32i
// module. It wraps log/slog with emulator-specific conveniences (child
// loggers per subsystem). The default handler is text, for a human
// reading CLI output; NewJSON is available for non-interactive use.
package rvlog

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with a Module helper for child loggers.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger = New(os.Stderr, slog.LevelInfo)

// New creates a Logger that writes human-readable text to w at the given
// level.
func New(w io.Writer, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewJSON creates a Logger that writes JSON to w, for non-interactive use.
func NewJSON(w io.Writer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// Default returns the package-level default logger (text, stderr, info).
func Default() *Logger { return defaultLogger }

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Module returns a child logger tagged with a "module" attribute.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
