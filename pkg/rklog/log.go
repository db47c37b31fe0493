// Package rklog provides structured internal diagnostic logging, separate
// from the Console Sink's parseable operator-facing lines. It writes to
// stderr by default so it never interleaves with the stdout-directed
// console contract.
package rklog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global internal diagnostic logger instance.
var Logger zerolog.Logger

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger tagged with the component name, e.g.
// "mount", "supervisor", "shutdown".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithService creates a child logger tagged with the supervised service
// name.
func WithService(service string) zerolog.Logger {
	return Logger.With().Str("service", service).Logger()
}

// WithBootID creates a child logger tagged with the boot-session
// correlation ID, so the diagnostic lines logged through it can be grepped
// together. Loggers from WithComponent and WithService do not carry the ID.
func WithBootID(bootID string) zerolog.Logger {
	return Logger.With().Str("boot_id", bootID).Logger()
}
