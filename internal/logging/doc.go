// Package logging assembles structured slog loggers used across the
// pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can
// automatically tag log lines with document IDs, run IDs, and stages.
// The package also provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
