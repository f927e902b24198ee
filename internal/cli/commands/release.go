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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"releaseorchestrator/internal/core/service"
	"releaseorchestrator/pkg/config"
	"releaseorchestrator/pkg/logging"
	storepostgres "releaseorchestrator/pkg/store/postgres"
)

// Feature: CLI_RELEASE
// Spec: spec/commands/release.md

// NewReleaseCommand returns the `releasectl release` command group,
// each subcommand invoking one of the Service API operations named in
// spec.md §4.8.
func NewReleaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Start, pause, resume, archive, and trigger releases",
	}

	cmd.AddCommand(newReleaseArchiveCommand())
	cmd.AddCommand(newReleasePauseCommand())
	cmd.AddCommand(newReleaseResumeCommand())
	cmd.AddCommand(newReleaseStartCommand())
	cmd.AddCommand(newReleaseTriggerStage2Command())
	cmd.AddCommand(newReleaseTriggerStage3Command())

	return cmd
}

func newReleaseStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <releaseId>",
		Short: "Start Stage 1 (Kickoff) for a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			releaseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid releaseId: %w", err)
			}

			result := svc.Start(cmd.Context(), service.StartInput{ReleaseID: releaseID})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}

func newReleasePauseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pause <releaseId> <tenantId> <accountId>",
		Short: "Pause a release (PauseType=USER_REQUESTED)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			releaseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid releaseId: %w", err)
			}

			result := svc.Pause(cmd.Context(), service.PauseInput{ReleaseID: releaseID, TenantID: args[1], AccountID: args[2]})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}

func newReleaseResumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <releaseId> <tenantId> <accountId>",
		Short: "Resume a user-paused release",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			releaseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid releaseId: %w", err)
			}

			result := svc.Resume(cmd.Context(), service.PauseInput{ReleaseID: releaseID, TenantID: args[1], AccountID: args[2]})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}

func newReleaseArchiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <releaseId> <accountId>",
		Short: "Archive a release",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			releaseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid releaseId: %w", err)
			}

			result := svc.Archive(cmd.Context(), service.ArchiveInput{ReleaseID: releaseID, AccountID: args[1]})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}

func newReleaseTriggerStage2Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger-stage2 <releaseId> <accountId>",
		Short: "Manually trigger Stage 2 (Regression)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			releaseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid releaseId: %w", err)
			}

			result := svc.TriggerStage2(cmd.Context(), service.TriggerStageInput{ReleaseID: releaseID, AccountID: args[1]})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}

func newReleaseTriggerStage3Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger-stage3 <releaseId> <accountId>",
		Short: "Manually trigger Stage 3 (PreRelease)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			releaseID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid releaseId: %w", err)
			}

			result := svc.TriggerStage3(cmd.Context(), service.TriggerStageInput{ReleaseID: releaseID, AccountID: args[1]})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}

// buildService loads config, opens the database, and returns a
// ready-to-use Service plus a close func the caller must defer.
func buildService(cmd *cobra.Command) (*service.Service, func(), error) {
	flags := ResolveFlags(cmd)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		if err == config.ErrConfigNotFound {
			return nil, nil, fmt.Errorf("releaseorchestrator config not found at %s", flags.Config)
		}
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storepostgres.Open(cmd.Context(), cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	svc := &service.Service{
		Store:     store.AsRepoStore(),
		Artifacts: storepostgres.NewArtifactStore(artifactsRoot(), artifactsDownloadBase()),
		Validate:  validator.New(),
		Logger:    logging.NewConsoleLogger(flags.Verbose),
	}

	return svc, func() { store.Close() }, nil
}

func printResult(cmd *cobra.Command, success bool, data any, errMsg string, statusCode int) error {
	if success {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK: %+v\n", data)
		return nil
	}
	return fmt.Errorf("failed (status %d): %s", statusCode, errMsg)
}
