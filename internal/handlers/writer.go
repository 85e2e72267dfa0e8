// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"
)

// Writer persists audit records to a backend.
type Writer interface {
	// WriteSync persists a record before returning.
	WriteSync(ctx context.Context, rec Record) error
	// WriteAsync queues a record for eventual persistence. It must not
	// block; implementations return an error when the queue is full.
	WriteAsync(rec Record) error
	// Close flushes queued records and releases resources.
	Close() error
}
