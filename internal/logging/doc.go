// Package logging assembles structured slog loggers and formatting helpers used
// across shelfsync.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so agent calls and manager operations tag
// their log lines with the agent name, operation and correlation id. NewNop
// provides a discarding logger for tests and wiring code that cannot fail.
package logging
