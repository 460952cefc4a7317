package fxcore

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with device-specific context.
// This provides structured logging with consistent field names.
//
// Logging only happens in the slow context. The audio context reports
// through notifications, which the Device turns into log records.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(os.Stderr, "json", level)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(os.Stderr, "text", level)
}

func newLogger(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPreset adds a preset field to the logger.
func (l *Logger) WithPreset(id int, name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("preset", id, "name", name),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogBoot logs the boot preset selection.
func (l *Logger) LogBoot(ctx context.Context, preset int, name string, restored bool) {
	l.InfoContext(ctx, "boot",
		"preset", preset,
		"name", name,
		"restored", restored,
	)
}

// LogPresetLoaded logs a committed preset switch.
func (l *Logger) LogPresetLoaded(ctx context.Context, preset int, name string, previous int) {
	l.InfoContext(ctx, "preset loaded",
		"preset", preset,
		"name", name,
		"previous", previous,
	)
}

// LogPresetFailed logs an aborted preset switch.
func (l *Logger) LogPresetFailed(ctx context.Context, active int, err error) {
	l.ErrorContext(ctx, "preset load failed",
		"active", active,
		"error", err,
	)
}

// LogDeadlineMissed logs overruns reported by the audio context.
func (l *Logger) LogDeadlineMissed(ctx context.Context, count uint64, total uint64) {
	l.WarnContext(ctx, "deadline missed",
		"count", count,
		"total", total,
	)
}

// LogPersist logs a state write.
func (l *Logger) LogPersist(ctx context.Context, preset int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persist failed",
			"preset", preset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "persist completed",
			"preset", preset,
		)
	}
}
