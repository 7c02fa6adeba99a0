// Package logging assembles structured slog loggers and formatting helpers used
// across filtertree.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can tag log lines
// with the run identifier and pipeline stage. The package also provides a
// no-op logger for tests and for core packages called without a logger.
package logging
