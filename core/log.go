package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Level mirrors slog's own numbering, the way the teacher pack's
// std/log/level.go does (Trace=-8 ... Fatal=12), so a Logger built on
// log/slog needs no separate translation table.
type Level int

const (
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
	LevelFatal Level = 12
)

// ParseLevel parses a string representation of a log level into a Level,
// returning an error for invalid inputs.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level: %s", s)
}

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the structured logger every pipeline, table, and face in this
// module logs through. The call convention (source, msg, key, val, ...)
// matches core.Log.Trace(s, "msg", "k", v) as used throughout the teacher's
// fw/fw/multicast.go and fw/mgmt/*.go.
type Logger struct {
	inner *slog.Logger
}

// Log is the package-level logger instance.
var Log = NewLogger(LevelInfo)

// NewLogger builds a Logger writing to stderr at the given minimum level.
func NewLogger(level Level) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(level),
	})
	return &Logger{inner: slog.New(h)}
}

// SetLevel adjusts the minimum level of the package-level Log.
func SetLevel(level Level) {
	Log = NewLogger(level)
}

func (l *Logger) log(level Level, source fmt.Stringer, msg string, kvs []any) {
	args := make([]any, 0, len(kvs)+2)
	if source != nil {
		args = append(args, "source", source.String())
	}
	args = append(args, kvs...)
	l.inner.Log(context.Background(), slog.Level(level), msg, args...)
}

func (l *Logger) Trace(source fmt.Stringer, msg string, kvs ...any) { l.log(LevelTrace, source, msg, kvs) }
func (l *Logger) Debug(source fmt.Stringer, msg string, kvs ...any) { l.log(LevelDebug, source, msg, kvs) }
func (l *Logger) Info(source fmt.Stringer, msg string, kvs ...any)  { l.log(LevelInfo, source, msg, kvs) }
func (l *Logger) Warn(source fmt.Stringer, msg string, kvs ...any)  { l.log(LevelWarn, source, msg, kvs) }
func (l *Logger) Error(source fmt.Stringer, msg string, kvs ...any) { l.log(LevelError, source, msg, kvs) }

// Fatal logs at FATAL and terminates the process, matching the teacher's
// core.Log.Fatal behavior used on unrecoverable startup errors.
func (l *Logger) Fatal(source fmt.Stringer, msg string, kvs ...any) {
	l.log(LevelFatal, source, msg, kvs)
	os.Exit(1)
}
