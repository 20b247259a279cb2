// Package logging assembles structured slog loggers and formatting helpers used
// across envwatch binaries.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so the engine, simulator and CLI tag
// log lines with the same keys (component, event_type, run_id). The package
// also provides a no-op logger for tests and wiring code that cannot fail, and
// prunes per-run log files past their retention window.
package logging
