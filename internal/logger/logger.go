package logger

import (
	"log/slog"
	"os"
	"strings"
)

var base *slog.Logger

// Init configures the process-wide logger. Text output by default, JSON when
// asJSON is set; level is one of debug/info/warn/error.
func Init(level string, asJSON bool) {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}

	var h slog.Handler
	if asJSON {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	base = slog.New(h)
	slog.SetDefault(base)
}

func levelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the configured logger, initializing defaults on first use so
// tests and helper binaries can log without calling Init.
func Get() *slog.Logger {
	if base == nil {
		Init("info", false)
	}
	return base
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}
