// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"
	"sync"

	"github.com/auditaspect/auditaspect/internal/audit"
)

// MemoryHandler records audit notifications as "PHASE:Type#Method"
// strings in memory. Safe for concurrent use.
type MemoryHandler struct {
	mu     sync.Mutex
	events []string
}

// NewMemoryHandler creates an empty in-memory handler.
func NewMemoryHandler() *MemoryHandler {
	return &MemoryHandler{}
}

// Before implements audit.Handler.
func (h *MemoryHandler) Before(_ context.Context, inv *audit.Invocation) error {
	h.add(audit.PhaseBefore, inv)
	return nil
}

// AfterReturning implements audit.Handler.
func (h *MemoryHandler) AfterReturning(_ context.Context, inv *audit.Invocation, _ any) error {
	h.add(audit.PhaseAfterReturning, inv)
	return nil
}

// AfterThrowing implements audit.Handler.
func (h *MemoryHandler) AfterThrowing(_ context.Context, inv *audit.Invocation, _ error) error {
	h.add(audit.PhaseAfterThrowing, inv)
	return nil
}

// Events returns a copy of the recorded event strings in arrival order.
func (h *MemoryHandler) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

// Reset discards all recorded events.
func (h *MemoryHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}

func (h *MemoryHandler) add(phase audit.Phase, inv *audit.Invocation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, phase.String()+":"+inv.Target())
}
