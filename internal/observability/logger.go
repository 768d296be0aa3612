// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability configures the pipeline's structured logger and its
// Prometheus counters.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nestauk/ai-research/pkg/types"
)

// NewLogger creates a zerolog logger from cfg. Output is stdout or stderr
// (default stderr, so stdout stays free for command summaries); Format is
// json or console.
func NewLogger(cfg types.LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stderr
	if strings.ToLower(cfg.Output) == "stdout" {
		out = os.Stdout
	}
	return newLogger(out, cfg)
}

func newLogger(out io.Writer, cfg types.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(parseLevel(cfg.Level))
}

// parseLevel converts a string log level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithExprContext tags a logger with the collection job being fetched.
func WithExprContext(logger zerolog.Logger, year, window int) zerolog.Logger {
	return logger.With().
		Int("year", year).
		Int("window", window).
		Logger()
}

// WithEntityContext tags a logger with the kind and id of the record being
// processed (e.g. "affiliation", 123).
func WithEntityContext(logger zerolog.Logger, kind string, id int64) zerolog.Logger {
	return logger.With().
		Str("entity", kind).
		Int64("entity_id", id).
		Logger()
}
