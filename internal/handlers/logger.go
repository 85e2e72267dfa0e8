// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"
	"log/slog"

	"github.com/auditaspect/auditaspect/internal/audit"
)

// LogHandler writes one structured log line per audit notification.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a log-backed handler. A nil logger falls back to
// slog.Default.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger}
}

// Before implements audit.Handler.
func (h *LogHandler) Before(ctx context.Context, inv *audit.Invocation) error {
	h.logger.InfoContext(ctx, "audit event",
		"phase", audit.PhaseBefore.String(),
		"target", inv.Target(),
		"arg_count", len(inv.Args),
	)
	return nil
}

// AfterReturning implements audit.Handler.
func (h *LogHandler) AfterReturning(ctx context.Context, inv *audit.Invocation, ret any) error {
	h.logger.InfoContext(ctx, "audit event",
		"phase", audit.PhaseAfterReturning.String(),
		"target", inv.Target(),
		"has_result", ret != nil,
	)
	return nil
}

// AfterThrowing implements audit.Handler.
func (h *LogHandler) AfterThrowing(ctx context.Context, inv *audit.Invocation, cause error) error {
	h.logger.WarnContext(ctx, "audit event",
		"phase", audit.PhaseAfterThrowing.String(),
		"target", inv.Target(),
		"error_class", errorClass(cause),
		"error", cause,
	)
	return nil
}
