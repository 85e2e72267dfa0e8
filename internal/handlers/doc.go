// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

// Package handlers provides the built-in audit.Handler implementations.
//
// # Handlers
//
//   - MemoryHandler: records notifications as strings in memory, mainly
//     for tests and local inspection.
//   - LogHandler: writes one structured log line per notification.
//   - DBHandler: persists a Record per notification through a Writer,
//     with a jsonl WAL fallback when a synchronous write fails.
//   - FailingHandler: always errors, for fault injection.
//
// # Persistence
//
// Writer is the storage boundary. PostgresWriter implements it with
// synchronous single-row inserts and batched asynchronous writes into the
// audit_events table. DBHandler routes BEFORE and AFTER_RETURNING records
// through the async path and AFTER_THROWING records through the sync
// path: failure records are the ones worth a write barrier.
//
// # Resilience
//
// When a sync write fails, the record is appended to a WAL file (jsonl).
// DBHandler.ReplayWAL pushes WAL entries back through the writer after an
// outage and truncates the file on success.
package handlers
