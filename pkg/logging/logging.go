// Package logging configures structured logging for idforge.
//
// It wraps log/slog with level/format parsing and a fan-out handler so the
// CLI can log to stderr and an audit file at the same time. Components accept
// a *slog.Logger in their constructors; use Nop() when logging is disabled.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level is a log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format is a log output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level to emit.
	Level Level

	// Format selects text or json output.
	Format Format

	// Output is the destination writer. Defaults to os.Stderr.
	Output io.Writer

	// FileOutput is an optional second destination. It receives every record
	// as JSON regardless of Format, fanned out through a MultiHandler.
	FileOutput io.Writer
}

// New creates a slog.Logger from the configuration.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	if cfg.FileOutput != nil {
		handler = NewMultiHandler(handler, slog.NewJSONHandler(cfg.FileOutput, opts))
	}
	return slog.New(handler)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a level string ("debug", "info", "warn", "error").
// Unrecognized values fall back to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat parses a format string ("text", "json"). Unrecognized values
// fall back to text.
func ParseFormat(s string) Format {
	if s == "json" || s == "JSON" {
		return FormatJSON
	}
	return FormatText
}
