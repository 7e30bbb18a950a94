// Package log provides a structured event journal for state containers.
//
// This package defines the Logger interface and Event type for capturing
// container lifecycle events: creation, listener registration and removal,
// and state updates. It is separate from operational logging (slog) - the
// journal is a complete machine-readable trace of what happened to every
// container, suitable for replay and analysis.
//
// # Basic Usage
//
// Containers accept a Logger through an option:
//
//	// For development: log to console via slog
//	store := subscription.NewStore(nil, subscription.WithEventLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/statesub/app.slog")
//
//	// Both: use MultiLogger
//	l := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Journal files are a stream of CBOR-encoded events with integer keys. The
// statesub-log CLI tool provides viewing, statistics and export.
//
// FileLogger buffers writes; Sync makes them durable and readable by other
// processes. Events that cannot be encoded are skipped, never half-written.
package log
