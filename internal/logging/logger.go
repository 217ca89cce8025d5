// Package logging builds the zerolog logger used by release-gate.
//
// Logs always go to stderr (or a file): stdout is reserved for the
// Azure Pipelines logging commands and for --json output.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level string

	// Format is the output format: json, console, or auto (console when
	// the output is a terminal).
	Format string

	// Output is where to write logs: stderr, discard, or a file path.
	Output string

	// NoColor disables color output in console mode.
	NoColor bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// New creates a logger from configuration.
func New(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewWithWriter(cfg, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w, applying level and format.
func NewWithWriter(cfg *Config, w io.Writer) zerolog.Logger {
	level := ParseLevel(cfg.Level)

	logger := zerolog.New(formatWriter(cfg, w)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// ResolveLevel picks the log level with clear precedence rules:
//  1. explicit level (the --log-level flag)
//  2. verbose (debug)
//  3. quiet (warn)
//  4. LOG_LEVEL environment variable
//  5. info
//
// When both verbose and quiet are set, quiet wins.
func ResolveLevel(explicit string, verbose, quiet bool) string {
	if explicit != "" {
		return ParseLevel(explicit).String()
	}
	if quiet {
		return "warn"
	}
	if verbose {
		return "debug"
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return ParseLevel(env).String()
	}
	return "info"
}

// ParseLevel parses a log level string. Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

// outputWriter opens the configured destination. Files that cannot be
// opened fall back to stderr.
func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stderr
		}
		return file
	}
}

// formatWriter wraps w in a console writer when requested, or when format
// is auto and w is a terminal.
func formatWriter(cfg *Config, w io.Writer) io.Writer {
	format := strings.ToLower(cfg.Format)
	if format == "auto" || format == "" {
		format = "json"
		if f, ok := w.(*os.File); ok {
			if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
				format = "console"
			}
		}
	}

	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor,
		}
	}
	return w
}
