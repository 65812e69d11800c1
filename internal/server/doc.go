// Package server exposes the CRM over HTTP. Authenticated routes sit behind
// the session middleware; admin routes additionally accept the configured
// service token. Prometheus metrics are served on /metrics.
package server
