// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

import (
	"context"
	"time"
)

// Handler is the three-phase observer capability registered under a name.
//
// Implementations must be safe for concurrent use: they run synchronously
// on the goroutine of the intercepted call, so a slow handler directly
// adds latency to the business call it observes. A non-nil error return
// or a panic is contained by the dispatcher and never reaches the
// business call.
type Handler interface {
	// Before is called immediately before the target invocation runs.
	Before(ctx context.Context, inv *Invocation) error
	// AfterReturning is called after the invocation returns successfully.
	// ret is the business return value and may be nil.
	AfterReturning(ctx context.Context, inv *Invocation, ret any) error
	// AfterThrowing is called after the invocation fails. cause is the
	// business error and is never nil.
	AfterThrowing(ctx context.Context, inv *Invocation, cause error) error
}

// Invocation is the ephemeral per-call context handed to handlers. It is
// created at interception and owned by the dispatcher for the duration of
// a phase; concurrent invocations never share one.
type Invocation struct {
	Site Site
	Args []any

	// Result is the business return value, set before AFTER_RETURNING.
	Result any
	// Err is the business error, set before AFTER_THROWING.
	Err error

	// StartedAt is the interception timestamp, used for duration
	// measurement by handlers that persist audit records.
	StartedAt time.Time
}

// NewInvocation creates the per-call context for a site.
func NewInvocation(site Site, args ...any) *Invocation {
	return &Invocation{
		Site:      site,
		Args:      args,
		StartedAt: time.Now(),
	}
}

// Target returns the "Type#Method" identifier of the intercepted call.
func (inv *Invocation) Target() string {
	return inv.Site.Key()
}
