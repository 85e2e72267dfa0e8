// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/auditaspect/auditaspect/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the PostgreSQL database.`,
		RunE:  runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show current migration version and pending migrations",
		RunE:  runMigrateStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Force the migration version without running migrations",
		Long: `Set the recorded migration version without applying any SQL.
Use only to recover from a dirty state after fixing the database by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: runMigrateForce,
	})

	return cmd
}

// openMigrator loads config and builds a Migrator for the configured
// database.
func openMigrator(cmd *cobra.Command) (*store.Migrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database URL is required (config database.url or DATABASE_URL)")
	}
	return store.NewMigrator(cfg.Database.URL)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // best-effort cleanup

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		cmd.Println("Database is up to date")
		return nil
	}

	cmd.Printf("Applying %d migration(s)...\n", len(pending))
	if err := migrator.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // best-effort cleanup

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Current version: %d (dirty: %t)\n", version, dirty)

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}
	cmd.Printf("Pending migrations: %v\n", pending)
	return nil
}

// parseForceVersion validates a migrate force argument.
func parseForceVersion(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("arg", arg).Errorf("version must be an integer, got %q", arg)
	}
	if version < 0 {
		return 0, oops.Code("INVALID_VERSION").Errorf("version must be non-negative, got %d", version)
	}
	return version, nil
}

func runMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := parseForceVersion(args[0])
	if err != nil {
		return err
	}

	migrator, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // best-effort cleanup

	if err := migrator.Force(version); err != nil {
		return err
	}
	cmd.Printf("Forced migration version to %d\n", version)
	return nil
}
