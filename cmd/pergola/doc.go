// Package main hosts the Pergola CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon's API: pipeline inspection, opportunity and
// delivery management, forecast reporting, user administration, and
// configuration scaffolding. It centralizes configuration resolution and
// service-token handling so subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
