// Package logging configures the process-wide structured logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type contextKey string

const worldIDKey contextKey = "world_id"

// Init installs a slog logger writing to w as the default and returns it.
// Format is "json" or anything else for text.
func Init(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// WithWorld tags ctx with the world a command operates on.
func WithWorld(ctx context.Context, worldID string) context.Context {
	return context.WithValue(ctx, worldIDKey, worldID)
}

// FromContext returns the default logger, annotated with the context's world.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if worldID, ok := ctx.Value(worldIDKey).(string); ok && worldID != "" {
		logger = logger.With("world_id", worldID)
	}
	return logger
}
