// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

// Package store provides database connectivity, schema migrations, and
// retention maintenance for the audit event log.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	connectBaseDelay   = 500 * time.Millisecond
	connectMaxDuration = 30 * time.Second
)

// Connect opens a pgx connection pool against databaseURL and verifies it
// with a ping. The ping is retried with fibonacci backoff so a database that
// is still starting up (e.g. alongside the process in a compose stack) does
// not fail the whole boot.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	backoff := retry.WithMaxDuration(connectMaxDuration, retry.NewFibonacci(connectBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_UNREACHABLE").With("operation", "ping database").Wrap(err)
	}

	return pool, nil
}
