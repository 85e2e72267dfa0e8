// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// RetentionConfig defines how long audit events are kept and how often
// expired ones are purged.
type RetentionConfig struct {
	Retain        time.Duration
	PurgeInterval time.Duration
}

// DefaultRetentionConfig returns the default retention policy.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Retain:        90 * 24 * time.Hour,
		PurgeInterval: 24 * time.Hour,
	}
}

// Purger removes audit events older than a cutoff and reports how many rows
// were deleted.
type Purger interface {
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// execer is the subset of pgxpool.Pool PostgresPurger needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresPurger deletes expired rows from audit_events.
type PostgresPurger struct {
	db execer
}

// NewPostgresPurger creates a purger backed by db.
func NewPostgresPurger(db execer) *PostgresPurger {
	return &PostgresPurger{db: db}
}

// PurgeExpired deletes audit events with a timestamp before olderThan.
func (p *PostgresPurger) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM audit_events WHERE timestamp < $1`, olderThan)
	if err != nil {
		return 0, oops.Code("PURGE_FAILED").With("older_than", olderThan).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// RetentionWorker runs periodic retention maintenance on the audit log.
type RetentionWorker struct {
	cfg    RetentionConfig
	purger Purger
	logger *slog.Logger
	clock  func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRetentionWorker creates a retention worker with the given policy.
func NewRetentionWorker(cfg RetentionConfig, purger Purger) *RetentionWorker {
	return &RetentionWorker{
		cfg:    cfg,
		purger: purger,
		logger: slog.Default(),
		clock:  time.Now,
	}
}

// RunOnce executes a single purge cycle.
func (w *RetentionWorker) RunOnce(ctx context.Context) error {
	cutoff := w.clock().Add(-w.cfg.Retain)
	purged, err := w.purger.PurgeExpired(ctx, cutoff)
	if err != nil {
		w.logger.Error("purge expired audit events failed", "error", err)
		return err
	}
	if purged > 0 {
		w.logger.Info("purged expired audit events", "count", purged, "cutoff", cutoff)
	}
	return nil
}

// Start begins periodic retention maintenance.
func (w *RetentionWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the retention worker and waits for the current cycle to finish.
func (w *RetentionWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *RetentionWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PurgeInterval)
	defer ticker.Stop()

	// Run once immediately so a long interval doesn't delay the first purge.
	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error("retention cycle failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("retention cycle failed", "error", err)
			}
		}
	}
}
