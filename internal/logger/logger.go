package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the global structured logger. Init must be called once at startup;
// packages that log before Init fall back to slog's default.
var L = slog.Default()

// Init initializes the global logger with a JSON handler at the given level.
func Init(logLevel string) {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	L = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(L)
}
