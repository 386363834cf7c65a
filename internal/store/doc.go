// Package store provides the SQLite-backed record store behind armory.
//
// The store is a generic CRUD adapter over named collections (see
// record.Kind): Create, Get, GetIn, Update and Delete, each filtered by
// field-equality criteria. It knows nothing about the relationships between
// collections; the data service composes them.
//
// # Patterns
//
// Deterministic reads:
//   - Every read is ORDER BY id ASC, so results follow insertion order
//   - Empty results are empty slices, never nil
//
// Closed dispatch:
//   - Collections are addressed by record.Kind, never by raw table name
//   - Unknown columns are rejected as errors.ErrMalformed before any SQL runs
//
// Units of work:
//   - Atomic runs a function against a transaction-scoped Adapter
//   - Multi-step writes (phase-mapping rebuilds, operation source mapping)
//     go through Atomic so they commit or roll back together
//
// Upserts are expressed in the schema (ON CONFLICT REPLACE / IGNORE), not in
// the adapter: Create is a plain insert. When an insert is ignored by a
// conflict clause, Create returns id 0.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// All store failures are marked errors.ErrStore.
package store
