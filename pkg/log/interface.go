// Package log provides the structured logging interface used by every
// multilabelcv component.
//
// Components never reach for a process-wide logger. A Logger is handed to each
// component at construction time, so tests can capture output with TestLogger
// and the CLI can choose between console and JSON output.
//
// Example usage:
//
//	logger := log.NewZerologLogger(os.Stderr, log.LevelInfo).With(
//	    log.ComponentKey, "multilabel.engine",
//	)
//	logger.Info("Fold completed",
//	    log.FoldKey, 3,
//	    log.MacroF1Key, 0.61,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. An error value is rendered
// with its message and, when it carries one, a stack trace.
type Logger interface {
	// Debug logs a debug-level message, typically per-label or per-round detail.
	Debug(msg string, fields ...any)

	// Info logs an info-level message about the run's progress.
	Info(msg string, fields ...any)

	// Warn logs a recoverable condition, such as a skipped fold or label.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error
	// it is logged under the "error" key:
	//
	//	logger.Error("Evaluation failed", err, log.FoldKey, 2)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider hands out named loggers derived from one base logger.
type LoggerProvider interface {
	// GetLogger returns the base logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger
}
