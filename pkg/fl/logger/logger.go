package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity level for logging.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	ErrorLevel
)

// Logger provides structured logging with level-based filtering.
type Logger interface {
	Debug(v ...any)
	Debugf(format string, a ...any)
	Info(v ...any)
	Infof(format string, a ...any)
	Error(v ...any)
	Errorf(format string, a ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	logger *slog.Logger
	level  Level
}

// New creates a logger with the specified level.
// Accepts: "debug", "info", "error" (case-insensitive, short forms allowed).
// Defaults to InfoLevel if the level string is unrecognized.
// Output format is JSON if LOG_FORMAT=json, otherwise human-readable text.
func New(levelStr string) Logger {
	level := parseLevel(levelStr)

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: toSlogLevel(level)}
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &slogLogger{
		logger: slog.New(handler),
		level:  level,
	}
}

func (l *slogLogger) Debug(v ...any) {
	if l.level <= DebugLevel {
		l.logger.Debug(fmt.Sprint(v...))
	}
}

func (l *slogLogger) Debugf(format string, a ...any) {
	if l.level <= DebugLevel {
		l.logger.Debug(fmt.Sprintf(format, a...))
	}
}

func (l *slogLogger) Info(v ...any) {
	if l.level <= InfoLevel {
		l.logger.Info(fmt.Sprint(v...))
	}
}

func (l *slogLogger) Infof(format string, a ...any) {
	if l.level <= InfoLevel {
		l.logger.Info(fmt.Sprintf(format, a...))
	}
}

func (l *slogLogger) Error(v ...any) {
	if l.level <= ErrorLevel {
		l.logger.Error(fmt.Sprint(v...))
	}
}

func (l *slogLogger) Errorf(format string, a ...any) {
	if l.level <= ErrorLevel {
		l.logger.Error(fmt.Sprintf(format, a...))
	}
}

// With returns a new logger with additional contextual fields.
// The returned logger preserves the current log level.
func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
		level:  l.level,
	}
}

type noopLogger struct{}

func (noopLogger) Debug(v ...any)                 {}
func (noopLogger) Debugf(format string, a ...any) {}
func (noopLogger) Info(v ...any)                  {}
func (noopLogger) Infof(format string, a ...any)  {}
func (noopLogger) Error(v ...any)                 {}
func (noopLogger) Errorf(format string, a ...any) {}
func (noopLogger) With(args ...any) Logger        { return noopLogger{} }

// NewNoop creates a no-op logger that discards all log output.
// Useful for testing or components that don't require logging.
func NewNoop() Logger {
	return noopLogger{}
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug", "dbg":
		return DebugLevel
	case "info", "inf":
		return InfoLevel
	case "error", "err":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
