package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

var (
	disabled atomic.Bool
	level    = new(slog.LevelVar)
	logger   atomic.Pointer[slog.Logger]
)

func init() {
	logger.Store(newLogger(os.Stdout, true))
}

func newLogger(w io.Writer, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	}))
}

// Setup replaces the process logger. Level is one of debug, info, warn, error.
func Setup(w io.Writer, lvl string, color bool) {
	level.Set(ParseLevel(lvl))
	logger.Store(newLogger(w, color))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Disable turns off all logging
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

// L returns the structured process logger.
func L() *slog.Logger {
	if disabled.Load() {
		return slog.New(slog.DiscardHandler)
	}
	return logger.Load()
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Err wraps an error as a log attribute.
func Err(err error) slog.Attr {
	return tint.Err(err)
}

func logf(lvl slog.Level, format string, v ...any) {
	if disabled.Load() {
		return
	}
	l := logger.Load()
	if !l.Enabled(context.Background(), lvl) {
		return
	}
	l.Log(context.Background(), lvl, fmt.Sprintf(format, v...))
}

// Info logs an info message
func Info(v ...any) {
	logf(slog.LevelInfo, "%s", fmt.Sprint(v...))
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	logf(slog.LevelInfo, format, v...)
}

// Error logs an error message
func Error(v ...any) {
	logf(slog.LevelError, "%s", fmt.Sprint(v...))
}

// Errorf logs a formatted error message
func Errorf(format string, v ...any) {
	logf(slog.LevelError, format, v...)
}

// Warn logs a warning message
func Warn(v ...any) {
	logf(slog.LevelWarn, "%s", fmt.Sprint(v...))
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	logf(slog.LevelWarn, format, v...)
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	logf(slog.LevelDebug, format, v...)
}
