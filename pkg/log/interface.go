// Package log provides a structured logging interface for souschef pipeline runs.
//
// This package defines a minimal, slog-compatible logging interface that allows
// for flexible implementation switching while providing recipe-specific
// structured logging capabilities. The interface is designed to integrate
// seamlessly with Go's standard log/slog package and structured logging
// libraries like zerolog.
//
// Key features:
//   - slog-compatible interface for future-proofing
//   - recipe-specific structured attributes (recipe ids, step names, partitions)
//   - context-aware logging with field chaining
//   - test-friendly with configurable output destinations
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.RecipeIDKey, 3,
//	    log.StepNameKey, "encode",
//	)
//	logger.Info("step fitted",
//	    log.AlgorithmKey, "target",
//	    log.SamplesKey, 1000,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// This interface provides the core logging methods with structured field
// support. It is implementation-agnostic, enabling easy switching between
// different logging backends while maintaining a consistent API. The With
// method enables creation of contextual loggers with pre-populated fields,
// which the Recipe Executor uses to stamp every message with the recipe id
// and current step.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If an error value is provided as a field, stack trace information
	// may be automatically included by the handler.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// This can be used to avoid expensive attribute construction for records
	// that would be discarded.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents the severity of a log message.
type Level int

// Log levels compatible with slog levels.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
