// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"releaseorchestrator/pkg/config"
	"releaseorchestrator/pkg/logging"
	"releaseorchestrator/pkg/store/postgres"
)

// Feature: CLI_MIGRATE
// Spec: spec/commands/migrate.md

// NewMigrateCommand returns the `releasectl migrate` command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  "Loads releaseorchestrator.yml and applies any pending Postgres migrations.",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	flags := ResolveFlags(cmd)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		if err == config.ErrConfigNotFound {
			return fmt.Errorf("releaseorchestrator config not found at %s", flags.Config)
		}
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewConsoleLogger(flags.Verbose)
	logger.Info("running migrations", logging.NewField("dsn", redactDSN(cfg.Database.DSN)))

	if flags.DryRun {
		logger.Info("dry-run mode: skipping migration execution")
		return nil
	}

	if err := postgres.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

// redactDSN hides a DSN's credentials before it ever reaches a log line.
func redactDSN(dsn string) string {
	at := -1
	for i, r := range dsn {
		if r == '@' {
			at = i
		}
	}
	if at == -1 {
		return dsn
	}
	scheme := -1
	for i := 0; i < at; i++ {
		if dsn[i] == '/' && i > 0 && dsn[i-1] == '/' {
			scheme = i + 1
			break
		}
	}
	if scheme == -1 {
		return "***"
	}
	return dsn[:scheme] + "***" + dsn[at:]
}
