// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/auditaspect/auditaspect/internal/audit"
	"github.com/auditaspect/auditaspect/internal/xdg"
)

// DBHandler persists one Record per audit notification through a Writer.
//
// BEFORE and AFTER_RETURNING records take the async path; AFTER_THROWING
// records are written synchronously with a WAL fallback, since failure
// records are the ones an operator cannot afford to lose.
type DBHandler struct {
	writer  Writer
	walPath string
	walFile *os.File
	walMu   sync.Mutex
}

// NewDBHandler creates a DB-backed handler. If walPath is empty, a
// default path in the XDG state directory is used.
func NewDBHandler(writer Writer, walPath string) *DBHandler {
	if walPath == "" {
		stateDir := xdg.StateDir()
		if err := xdg.EnsureDir(stateDir); err != nil {
			slog.Error("failed to ensure state directory for WAL", "error", err)
			walPath = filepath.Join(os.TempDir(), "auditaspect-wal.jsonl")
		} else {
			walPath = filepath.Join(stateDir, "audit-wal.jsonl")
		}
	}
	return &DBHandler{writer: writer, walPath: walPath}
}

// Before implements audit.Handler.
func (h *DBHandler) Before(_ context.Context, inv *audit.Invocation) error {
	return h.writer.WriteAsync(newRecord(audit.PhaseBefore, inv, nil))
}

// AfterReturning implements audit.Handler.
func (h *DBHandler) AfterReturning(_ context.Context, inv *audit.Invocation, _ any) error {
	return h.writer.WriteAsync(newRecord(audit.PhaseAfterReturning, inv, nil))
}

// AfterThrowing implements audit.Handler.
func (h *DBHandler) AfterThrowing(ctx context.Context, inv *audit.Invocation, cause error) error {
	rec := newRecord(audit.PhaseAfterThrowing, inv, cause)
	if err := h.writer.WriteSync(ctx, rec); err != nil {
		if walErr := h.writeToWAL(rec); walErr != nil {
			slog.Error("audit record lost: both DB and WAL writes failed",
				"db_error", err,
				"wal_error", walErr,
				"target", rec.Target,
			)
			WriterFailures.WithLabelValues("wal_failed").Inc()
			return oops.With("target", rec.Target).Wrap(walErr)
		}
		slog.Warn("audit record parked in WAL after DB write failure",
			"error", err,
			"target", rec.Target,
		)
	}
	return nil
}

// writeToWAL appends a record to the write-ahead log.
func (h *DBHandler) writeToWAL(rec Record) error {
	h.walMu.Lock()
	defer h.walMu.Unlock()

	if h.walFile == nil {
		file, err := os.OpenFile(h.walPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY|os.O_SYNC, 0o600)
		if err != nil {
			return oops.With("path", h.walPath).Wrap(err)
		}
		h.walFile = file
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return oops.Wrap(err)
	}
	if _, err := fmt.Fprintf(h.walFile, "%s\n", data); err != nil {
		return oops.Wrap(err)
	}

	WALEntries.Inc()
	return nil
}

// ReplayWAL pushes parked WAL records back through the writer and
// truncates the WAL on success. Call after backend recovery.
func (h *DBHandler) ReplayWAL(ctx context.Context) error {
	h.walMu.Lock()
	defer h.walMu.Unlock()

	if _, err := os.Stat(h.walPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(h.walPath)
	if err != nil {
		return oops.With("path", h.walPath).Wrap(err)
	}
	if len(data) == 0 {
		return nil
	}

	replayed := 0
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			slog.Error("failed to unmarshal WAL record", "error", err, "line", line)
			WriterFailures.WithLabelValues("wal_unmarshal_failed").Inc()
			continue
		}

		if err := h.writer.WriteSync(ctx, rec); err != nil {
			slog.Error("failed to replay WAL record", "error", err, "target", rec.Target)
			WriterFailures.WithLabelValues("wal_replay_failed").Inc()
			// Continue with other records
		}
		replayed++
	}

	if err := os.Truncate(h.walPath, 0); err != nil {
		return oops.With("path", h.walPath).Wrap(err)
	}

	WALEntries.Set(0)
	slog.Info("replayed WAL records", "count", replayed)
	return nil
}

// Close closes the writer and the WAL file.
func (h *DBHandler) Close() error {
	if err := h.writer.Close(); err != nil {
		return oops.Wrap(err)
	}

	h.walMu.Lock()
	defer h.walMu.Unlock()
	if h.walFile != nil {
		if err := h.walFile.Close(); err != nil {
			return oops.Wrap(err)
		}
		h.walFile = nil
	}
	return nil
}
