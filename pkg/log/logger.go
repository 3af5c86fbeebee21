package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger is the production Logger backed by rs/zerolog.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger writes JSON lines to w, one object per record.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

// NewConsoleLogger writes human-friendly lines to w.
func NewConsoleLogger(w io.Writer, level Level, noColor bool) *ZerologLogger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: noColor}
	return NewZerologLogger(cw, level)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &ZerologLogger{zl: zerolog.Nop()}
}

// SetupLogger builds the logger used by the CLI from its textual settings.
// format is "console" or "json".
func SetupLogger(w io.Writer, level, format string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleLogger(w, lvl, false), nil
	case "json":
		return NewZerologLogger(w, lvl), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

// ParseLevel converts "debug", "info", "warn" or "error" to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	emit(l.zl.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	emit(l.zl.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	emit(l.zl.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (l *ZerologLogger) Error(msg string, fields ...any) {
	emit(l.zl.Error(), msg, leadingError(fields))
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ctx = ctx.Object(key, v)
		case error:
			ctx = ctx.Str(key, v.Error())
			if st := extractStacktrace(v); st != "" {
				ctx = ctx.Str(StacktraceAttrKey, st)
			}
		default:
			ctx = ctx.Interface(key, v)
		}
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.zl.GetLevel() <= toZerologLevel(level)
}

func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case string:
			e.Str(key, v)
		case int:
			e.Int(key, v)
		case float64:
			e.Float64(key, v)
		case bool:
			e.Bool(key, v)
		case []string:
			e.Strs(key, v)
		case time.Duration:
			e.Dur(key, v)
		case error:
			appendError(e, key, v)
		case zerolog.LogObjectMarshaler:
			e.Object(key, v)
		default:
			e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

// leadingError turns Error(msg, err, k, v...) into Error(msg, "error", err, k, v...).
func leadingError(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	if err, ok := fields[0].(error); ok {
		out := make([]any, 0, len(fields)+1)
		out = append(out, ErrAttrKey, err)
		return append(out, fields[1:]...)
	}
	return fields
}

// Provider derives component loggers from one base logger.
type Provider struct {
	base Logger
}

// NewProvider creates a Provider around base.
func NewProvider(base Logger) *Provider {
	return &Provider{base: base}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *Provider) GetLogger() Logger {
	return p.base
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *Provider) GetLoggerWithName(name string) Logger {
	return p.base.With(ComponentKey, name)
}
