package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger wires the process logger: human-readable text on stderr for the
// person at the terminal, JSON records appended to logFile for later
// inspection. The log directory is created if needed (the default file lives
// under the studymate config directory conventions). The returned cleanup
// closes the file.
//
// A log file that cannot be opened degrades to stderr-only; chat must keep
// working without one.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	stderrHandler := slog.NewTextHandler(os.Stderr, opts)
	noop := func() error { return nil }

	if dir := filepath.Dir(logFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Warn("log directory unavailable, logging to stderr only", "dir", dir, "error", err)
			return slog.New(stderrHandler), noop
		}
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Warn("log file unavailable, logging to stderr only", "file", logFile, "error", err)
		return slog.New(stderrHandler), noop
	}

	logger := slog.New(slogmulti.Fanout(
		stderrHandler,
		slog.NewJSONHandler(file, opts),
	))
	return logger, file.Close
}

// SetupLoggerWithWriters builds the same fan-out over arbitrary writers.
// Used by tests.
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(stderr, opts),
		slog.NewJSONHandler(file, opts),
	))
}

// parseLogLevel maps the STUDYMATE_LOG_LEVEL knob onto slog levels.
// Unrecognised values fall back to info rather than failing startup.
func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
