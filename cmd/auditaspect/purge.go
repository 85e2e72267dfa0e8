// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/auditaspect/auditaspect/internal/store"
)

// NewPurgeCmd creates the purge subcommand.
func NewPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Purge expired audit events",
		Long:  `Delete audit events older than the configured retention period.`,
		RunE:  runPurge,
	}
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (config database.url or DATABASE_URL)")
	}

	ctx := cmd.Context()
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	worker := store.NewRetentionWorker(store.RetentionConfig{
		Retain:        cfg.Retention.Retain,
		PurgeInterval: cfg.Retention.PurgeInterval,
	}, store.NewPostgresPurger(pool))

	if err := worker.RunOnce(ctx); err != nil {
		return err
	}
	cmd.Println("Purge completed")
	return nil
}
