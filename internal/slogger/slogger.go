// Package slogger provides a shared LOG_LEVEL-aware slog initialization helper.
//
// Call Init() at the start of main() to configure the global slog logger from
// the LOG_LEVEL environment variable. Valid values: "debug", "info", "warn",
// "error". Default: "info". Logs go to stderr so report output stays clean
// on stdout.
package slogger

import (
	"log/slog"
	"os"
	"strings"
)

var level *slog.LevelVar

// Init reads LOG_LEVEL, configures a global slog TextHandler on stderr, and
// sets it as the default logger.
func Init() {
	level = &slog.LevelVar{}
	level.Set(parseLevel(os.Getenv("LOG_LEVEL")))

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Level returns the current slog.Level.
func Level() slog.Level {
	if level == nil {
		return slog.LevelInfo
	}
	return level.Level()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
