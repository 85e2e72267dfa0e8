// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package audit

// Phase identifies the moment of a call at which handlers are notified.
type Phase uint8

const (
	// PhaseBefore fires before the target invocation runs.
	PhaseBefore Phase = iota
	// PhaseAfterReturning fires after the invocation returns successfully.
	PhaseAfterReturning
	// PhaseAfterThrowing fires after the invocation fails.
	PhaseAfterThrowing
)

func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "BEFORE"
	case PhaseAfterReturning:
		return "AFTER_RETURNING"
	case PhaseAfterThrowing:
		return "AFTER_THROWING"
	default:
		return "unknown"
	}
}
