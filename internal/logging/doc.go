// Package logging constructs slog loggers for the Pergola daemon and CLI.
//
// It offers console and JSON handlers, level parsing, multi-destination
// writers, and standardized attribute keys so opportunity, pipeline, and
// request identifiers appear consistently across subsystems.
package logging
