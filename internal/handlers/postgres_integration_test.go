//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/auditaspect/auditaspect/internal/handlers"
	"github.com/auditaspect/auditaspect/internal/store"
)

func TestPostgresWriter_RoundTrip(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("audit"),
		postgres.WithUsername("audit"),
		postgres.WithPassword("audit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := store.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	writer := handlers.NewPostgresWriter(pool)
	defer writer.Close()

	rec := handlers.Record{
		ID:           ulid.Make(),
		Phase:        "AFTER_THROWING",
		Target:       "DemoService#Boom",
		ErrorClass:   "INVALID_ARGUMENT",
		ErrorMessage: "expected",
		DurationUS:   42,
		Timestamp:    time.Now().UTC(),
	}
	require.NoError(t, writer.WriteSync(ctx, rec))

	var phase, target, errorClass string
	err = pool.QueryRow(ctx,
		`SELECT phase, target, error_class FROM audit_events WHERE id = $1`,
		rec.ID.String()).Scan(&phase, &target, &errorClass)
	require.NoError(t, err)
	assert.Equal(t, "AFTER_THROWING", phase)
	assert.Equal(t, "DemoService#Boom", target)
	assert.Equal(t, "INVALID_ARGUMENT", errorClass)

	// Async writes land after the flush period.
	asyncRec := handlers.Record{
		ID:        ulid.Make(),
		Phase:     "BEFORE",
		Target:    "DemoService#Ok",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, writer.WriteAsync(asyncRec))
	require.Eventually(t, func() bool {
		var n int
		if err := pool.QueryRow(ctx,
			`SELECT count(*) FROM audit_events WHERE id = $1`,
			asyncRec.ID.String()).Scan(&n); err != nil {
			return false
		}
		return n == 1
	}, 10*time.Second, 100*time.Millisecond)

	// Retention purge removes everything older than the cutoff.
	purger := store.NewPostgresPurger(pool)
	purged, err := purger.PurgeExpired(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(2))
}
