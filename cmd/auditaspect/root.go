// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/auditaspect/auditaspect/internal/config"
	"github.com/auditaspect/auditaspect/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the auditaspect CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auditaspect",
		Short: "auditaspect - declarative audit interception for services",
		Long: `auditaspect intercepts service method calls and dispatches ordered
audit handlers at BEFORE, AFTER_RETURNING, and AFTER_THROWING phases,
persisting the resulting audit trail to PostgreSQL.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewDemoCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewPurgeCmd())

	return cmd
}

// loadConfig loads configuration honoring the --config flag and sets up the
// default logger from it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	logging.SetDefault("auditaspect", version, cfg.Log.Format, cfg.Log.Level)
	return cfg, nil
}
