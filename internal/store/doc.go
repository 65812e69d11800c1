// Package store persists CRM records in SQLite and exposes typed accessors
// for pipelines, opportunities, and their derived records.
//
// The Store manages database connections, schema initialization, busy-retry
// write helpers, and the queries the workflow and API layers depend on:
// pipeline/stage lookups, opportunity CRUD on both the commercial and delivery
// tables, stage history, payment instructions, activities, proposals, users,
// and report aggregates.
//
// Derived-record invariants live in the schema: delivery_opportunities carries
// a unique index on commercial_opportunity_id and payment_instructions on
// delivery_opportunity_id, so the insert-if-absent helpers are atomic rather
// than check-then-insert.
//
// Treat this package as the single source of truth for CRM persistence; when
// you add tables or columns, update schema.sql and bump schemaVersion.
package store
