// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

const insertRecordSQL = `
	INSERT INTO audit_events (
		id, phase, target, error_class, error_message, duration_us, timestamp
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// DB is the subset of pgxpool.Pool used by PostgresWriter.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresWriter implements Writer for PostgreSQL. Sync writes insert a
// single row; async writes are batched by a consumer goroutine and
// flushed by size or period.
type PostgresWriter struct {
	db          DB
	asyncChan   chan Record
	stopChan    chan struct{}
	wg          sync.WaitGroup
	batchSize   int
	flushPeriod time.Duration
}

// PostgresWriterOption configures a PostgresWriter during construction.
type PostgresWriterOption func(*PostgresWriter)

// WithBatchSize overrides the async batch size (default 100).
func WithBatchSize(n int) PostgresWriterOption {
	return func(w *PostgresWriter) {
		w.batchSize = n
	}
}

// WithFlushPeriod overrides the async flush period (default 1s).
func WithFlushPeriod(d time.Duration) PostgresWriterOption {
	return func(w *PostgresWriter) {
		w.flushPeriod = d
	}
}

// NewPostgresWriter creates a PostgresWriter over the given connection
// pool and starts its batch consumer.
func NewPostgresWriter(db DB, opts ...PostgresWriterOption) *PostgresWriter {
	w := &PostgresWriter{
		db:          db,
		asyncChan:   make(chan Record, 1000),
		stopChan:    make(chan struct{}),
		batchSize:   100,
		flushPeriod: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.batchConsumer()

	return w
}

// WriteSync inserts a single record before returning.
func (w *PostgresWriter) WriteSync(ctx context.Context, rec Record) error {
	_, err := w.db.Exec(ctx, insertRecordSQL,
		rec.ID.String(),
		rec.Phase,
		rec.Target,
		rec.ErrorClass,
		rec.ErrorMessage,
		rec.DurationUS,
		rec.Timestamp,
	)
	if err != nil {
		WriterFailures.WithLabelValues(failureReason(err)).Inc()
		return oops.
			With("phase", rec.Phase).
			With("target", rec.Target).
			Wrap(err)
	}
	return nil
}

// WriteAsync queues a record for batched persistence.
func (w *PostgresWriter) WriteAsync(rec Record) error {
	select {
	case w.asyncChan <- rec:
		return nil
	default:
		WriterChannelFull.Inc()
		return oops.Errorf("async audit channel full")
	}
}

// batchConsumer drains the async channel into periodic batch writes.
func (w *PostgresWriter) batchConsumer() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.flushPeriod)
	defer ticker.Stop()

	var batch []Record

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.writeBatch(ctx, batch); err != nil {
			slog.Error("audit batch write failed", "error", err, "count", len(batch))
			WriterFailures.WithLabelValues(failureReason(err)).Inc()
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-w.asyncChan:
			batch = append(batch, rec)
			if len(batch) >= w.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-w.stopChan:
			for {
				select {
				case rec := <-w.asyncChan:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}

// writeBatch inserts records in a single transaction. Individual insert
// failures are logged and skipped so one bad record cannot sink a batch.
func (w *PostgresWriter) writeBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return oops.Wrap(err)
	}
	defer func() {
		//nolint:errcheck // Rollback error is expected when the transaction commits
		_ = tx.Rollback(ctx)
	}()

	for i := range records {
		rec := &records[i]
		_, err := tx.Exec(ctx, insertRecordSQL,
			rec.ID.String(),
			rec.Phase,
			rec.Target,
			rec.ErrorClass,
			rec.ErrorMessage,
			rec.DurationUS,
			rec.Timestamp,
		)
		if err != nil {
			slog.Error("audit record insert failed",
				"error", err,
				"reason", failureReason(err),
				"target", rec.Target,
				"phase", rec.Phase,
			)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Wrap(err)
	}
	return nil
}

// Close drains the async channel and stops the batch consumer.
func (w *PostgresWriter) Close() error {
	close(w.stopChan)
	w.wg.Wait()
	return nil
}

// failureReason classifies a persistence error for the failure metric.
func failureReason(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return "constraint_violation"
		case pgerrcode.IsConnectionException(pgErr.Code):
			return "connection"
		case pgerrcode.IsInsufficientResources(pgErr.Code):
			return "insufficient_resources"
		case pgerrcode.IsSyntaxErrororAccessRuleViolation(pgErr.Code):
			return "access_violation"
		default:
			return pgErr.Code
		}
	}
	return "other"
}
