// Package logging configures zerolog for the collector. Every component
// logs through a named child of the global logger so one Setup call at
// process start controls level and format everywhere.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool

	// Output is where log lines go. Defaults to os.Stderr so the mapping
	// summary on stdout stays machine-readable.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child logger tagged with a component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, TTL)
//   - Individual page requests (offset, limit)
//   - Retry decisions and backoff durations
//
// Info: Normal operation events
//   - Run start/completion with totals
//   - Per-batch collection progress
//   - Successful writes to the output sink
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts after page fetch failures
//   - Cache errors (fallback to direct request)
//   - Sink write failures (in-memory mapping still valid)
//
// Error: Error conditions requiring attention
//   - Initial request failures (run aborted)
//   - Page fetch failures after retries are exhausted
//
// Context Fields:
//   - endpoint: gateway endpoint path
//   - offset, limit, total: pagination cursor state
//   - batch: 1-based batch number
//   - collected: mapping size so far
//   - status: HTTP status code
//   - error_class: error classification (client, server, rate_limit, network)
//   - duration: request or run duration
