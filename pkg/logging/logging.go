// Package logging configures structured logging on top of log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction. The zero value produces a text
// logger at Info level on stderr.
type Config struct {
	Level   string    // "debug", "info", "warn", "error"
	JSON    bool      // JSON output instead of text
	Service string    // added as a "service" attribute on every record
	Output  io.Writer // defaults to os.Stderr
}

// New builds a slog.Logger from the config.
func New(config Config) *slog.Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(config.Level)}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
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
