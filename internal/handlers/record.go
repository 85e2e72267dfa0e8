// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/auditaspect/auditaspect/internal/audit"
)

// Record is one persisted audit event.
type Record struct {
	ID           ulid.ULID `json:"id"`
	Phase        string    `json:"phase"`
	Target       string    `json:"target"`
	ErrorClass   string    `json:"error_class,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationUS   int64     `json:"duration_us"`
	Timestamp    time.Time `json:"timestamp"`
}

// newRecord builds a Record for one notification. cause is nil except for
// AFTER_THROWING. DurationUS measures time since interception, so BEFORE
// records carry the pre-call overhead and AFTER records the call latency.
func newRecord(phase audit.Phase, inv *audit.Invocation, cause error) Record {
	rec := Record{
		ID:         ulid.Make(),
		Phase:      phase.String(),
		Target:     inv.Target(),
		DurationUS: time.Since(inv.StartedAt).Microseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if cause != nil {
		rec.ErrorClass = errorClass(cause)
		rec.ErrorMessage = cause.Error()
	}
	return rec
}

// errorClass derives a stable classification for a business error: the
// oops code when present, otherwise the concrete Go type.
func errorClass(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok && code != "" {
			return code
		}
	}
	return fmt.Sprintf("%T", err)
}
