// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"

	"github.com/samber/oops"

	"github.com/auditaspect/auditaspect/internal/audit"
)

// FailingHandler errors on every phase. It exists for fault injection in
// tests and the demo scenario; the dispatcher must contain its failures.
type FailingHandler struct{}

// Before implements audit.Handler.
func (FailingHandler) Before(_ context.Context, _ *audit.Invocation) error {
	return oops.Errorf("before boom")
}

// AfterReturning implements audit.Handler.
func (FailingHandler) AfterReturning(_ context.Context, _ *audit.Invocation, _ any) error {
	return oops.Errorf("afterReturning boom")
}

// AfterThrowing implements audit.Handler.
func (FailingHandler) AfterThrowing(_ context.Context, _ *audit.Invocation, _ error) error {
	return oops.Errorf("afterThrowing boom")
}
