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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"releaseorchestrator/internal/core/service"
)

// Feature: CLI_RETRY_TASK
// Spec: spec/commands/retry-task.md

// NewRetryTaskCommand returns the `releasectl retry-task` command.
func NewRetryTaskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retry-task <taskId> <accountId>",
		Short: "Reset a FAILED task to PENDING and clear a TASK_FAILURE pause",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStore, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			taskID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid taskId: %w", err)
			}

			result := svc.RetryTask(cmd.Context(), service.RetryTaskInput{TaskID: taskID, AccountID: args[1]})
			return printResult(cmd, result.Success, result.Data, result.Error, result.StatusCode)
		},
	}
}
