// Package log provides the roomwatch journal.
//
// The journal is a machine-readable trace of everything the subscription
// engine decides: presence events received, subscriptions added and removed,
// notifications sent, relocations attempted and errors reported. It is
// separate from operational logging (slog). Operational logs explain what the
// process is doing; the journal answers "why did (or didn't) I get pinged".
//
// # Basic Usage
//
// Applications configure the journal by providing a Logger implementation:
//
//	// For development: journal to console via slog
//	cfg.Journal = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Journal, _ = log.NewFileLogger("/var/log/roomwatch/engine.rwlog")
//
//	// Both: use MultiLogger
//	cfg.Journal = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Correlation
//
// Every presence event and every command gets an EventID when the engine
// starts handling it. All journal entries caused by that event or command
// carry the same EventID.
//
// # File Format
//
// Journal files are a stream of CBOR-encoded events with integer keys, using
// the .rwlog extension. The roomwatch-log CLI tool provides viewing,
// filtering, export and statistics.
package log
