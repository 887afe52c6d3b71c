// Package logging assembles structured slog loggers and formatting helpers used
// across bookfetch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run ids, policy ids, and asset ids. Each fetch run tees the
// console stream into a JSON log file under the configured log directory. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
