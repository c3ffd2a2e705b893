package logger

import (
	"context"
	"log/slog"
	"strings"
)

// LevelCritical marks failures that are terminal for a unit of work but must
// not stop the process. It sorts above slog.LevelError.
const LevelCritical = slog.Level(12)

// Critical logs msg at LevelCritical.
func Critical(ctx context.Context, log *slog.Logger, msg string, attrs ...any) {
	log.Log(ctx, LevelCritical, msg, attrs...)
}

// ParseLevel converts a level name to slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// replaceLevel renders LevelCritical as "CRITICAL" instead of "ERROR+4".
func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}
