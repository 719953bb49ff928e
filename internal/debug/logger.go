package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger  = slog.New(slog.NewJSONHandler(io.Discard, nil))
	enabled = false
	closer  io.Closer
)

// Setup enables logging to a rotating file at path with the given level
// (debug, info, warn or error). An empty path leaves logging disabled.
func Setup(path, level string) error {
	if path == "" {
		return nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if lvl == slog.LevelDebug {
		w.MaxSize = 256
	}

	setHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}), w)
	return nil
}

// SetOutput sends debug-level JSON records to w
func SetOutput(w io.Writer) {
	if w == nil || w == io.Discard {
		setHandler(slog.NewJSONHandler(io.Discard, nil), nil)
		enabled = false
		return
	}
	setHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}), nil)
}

func setHandler(h slog.Handler, c io.Closer) {
	Close()
	logger = slog.New(h)
	enabled = true
	closer = c
}

// Close flushes and closes the log file opened by Setup, if any
func Close() {
	if closer != nil {
		closer.Close()
		closer = nil
	}
}

// ParseLevel converts a level name to a slog level. The empty string
// means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%s: invalid log level", level)
	}
}

// Log writes a printf-style debug message
func Log(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}

// Info logs a structured informational message
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a structured warning
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs a structured error
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return enabled && logger.Enabled(context.Background(), slog.LevelDebug)
}
