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
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/service"
)

// Feature: CLI_UPLOAD_BUILD
// Spec: spec/commands/upload-build.md

// NewUploadBuildCommand returns the `releasectl upload-build` command.
func NewUploadBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload-build <releaseId> <stage> <platform> <file> <accountId>",
		Short: "Upload a manually-built artifact for a release/stage/platform",
		Long:  "stage is one of KICKOFF, REGRESSION, POST_REGRESSION; platform is an accepted PlatformName.",
		Args:  cobra.ExactArgs(5),
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

			data, err := os.ReadFile(args[3])
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}

			result := svc.UploadManualBuild(cmd.Context(), service.UploadManualBuildInput{
				ReleaseID: releaseID,
				Stage:     domain.TaskStage(args[1]),
				Platform:  domain.PlatformName(args[2]),
				FileBytes: data,
				Filename:  filepath.Base(args[3]),
				AccountID: args[4],
			})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
	return cmd
}
