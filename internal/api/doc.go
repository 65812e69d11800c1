// Package api defines the transport DTOs and the service layer the HTTP
// server and CLI consume. Services validate input, delegate persistence to
// the store and stage moves to the workflow engine, and convert rows into
// JSON-friendly payloads.
package api
