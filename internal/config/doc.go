// Package config loads, normalizes, and validates Pergola configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies environment overrides such as
// PERGOLA_SESSION_SECRET. The Config type centralizes every knob the daemon
// and CLI need, so database and blob directories, bind addresses, and service
// credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
