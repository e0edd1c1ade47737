// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Setup returns a logger writing to w in format ("json" or "text") at
// level ("debug", "info", "warn", "error"). Unknown values fall back to
// json and info. Every record carries a service attribute.
func Setup(service, format, level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", service)
}

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
