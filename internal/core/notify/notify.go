// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package notify implements the Notification & Polling Dispatch
// collaborator (spec.md §4.9): a single periodic poll (Run) that, for
// each release it is given, refreshes the ExternalData of IN_PROGRESS
// tasks from the WorkflowPolling capability, consumed passively by the
// orchestrator on its next tick. There are no separate per-release
// "pending" and "running" jobs, and PENDING tasks are not polled.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
	"releaseorchestrator/pkg/providers/workflowpolling"
)

// Feature: CORE_NOTIFY_POLLING
// Spec: spec/core/notify.md

// Dispatcher runs the periodic poll that refreshes in-flight tasks'
// ExternalData from their external provider (spec.md §4.9).
type Dispatcher struct {
	Store   *repo.Store
	Polling workflowpolling.WorkflowPolling
	Logger  logging.Logger
}

// PollActive refreshes every task of the release whose status is
// IN_PROGRESS and which already carries an externalId; tasks in any
// other status are skipped.
func (d *Dispatcher) PollActive(ctx context.Context, releaseID uuid.UUID) error {
	targets := make([]workflowpolling.PollTarget, 0)
	for _, stage := range []domain.TaskStage{domain.TaskStageKickoff, domain.TaskStageRegression, domain.TaskStagePostRegression} {
		tasks, err := d.Store.Tasks.FindByReleaseAndStage(ctx, releaseID, stage)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.TaskStatus != domain.TaskStatusInProgress || t.ExternalID == nil {
				continue
			}
			targets = append(targets, workflowpolling.PollTarget{
				TaskID:     t.ID.String(),
				ExternalID: *t.ExternalID,
				TaskType:   string(t.TaskType),
			})
		}
	}
	if len(targets) == 0 {
		return nil
	}

	updates, err := d.Polling.Poll(ctx, targets)
	if err != nil {
		d.Logger.Warn("workflow polling failed", logging.NewField("releaseId", releaseID), logging.NewField("cause", err.Error()))
		return nil
	}

	for _, u := range updates {
		taskID, err := uuid.Parse(u.TaskID)
		if err != nil {
			continue
		}
		data := u.ExternalData
		if err := d.Store.Tasks.Update(ctx, taskID, repo.ReleaseTaskPatch{ExternalData: &data}); err != nil {
			d.Logger.Error("failed to persist poll update", logging.NewField("taskId", taskID), logging.NewField("cause", err.Error()))
		}
	}
	return nil
}

// Run polls every active release on a fixed interval until ctx is
// cancelled. This is a convenience driver for deployments that do not
// want to wire polling into the Global Scheduler's own tick.
func (d *Dispatcher) Run(ctx context.Context, releaseIDs func(ctx context.Context) ([]uuid.UUID, error), period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := releaseIDs(ctx)
			if err != nil {
				d.Logger.Error("failed to list active releases for polling", logging.NewField("cause", err.Error()))
				continue
			}
			for _, id := range ids {
				if err := d.PollActive(ctx, id); err != nil {
					d.Logger.Error("poll active failed", logging.NewField("releaseId", id), logging.NewField("cause", err.Error()))
				}
			}
		}
	}
}
