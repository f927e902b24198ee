// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package executor implements the Task Executor (spec.md §4.4): it takes
// one ReleaseTask, dispatches it to the provider capability named by its
// TaskType, and persists the result using the Category A/B split named
// in spec.md §4.1.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
)

// Feature: CORE_TASK_EXECUTOR
// Spec: spec/core/task-executor.md

// ExecContext carries the per-release values a dispatch handler needs
// that are not already on the ReleaseTask row itself.
type ExecContext struct {
	Release    *domain.Release
	Mappings   []domain.PlatformTargetMapping
	CycleTag   string
	CronConfig domain.CronConfig
}

// result is what a dispatch handler returns: the provider response,
// reduced to the single-identifier-plus-structured-data shape the
// Category A/B split in spec.md §4.1 expects.
type result struct {
	ExternalID *string
	Data       map[string]any
}

// handlerFunc performs one task type's provider call.
type handlerFunc func(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error)

// Executor dispatches ReleaseTasks to provider capabilities and persists
// outcomes, generalized from the teacher's providers/backend execution
// loop into the task-oriented shape spec.md §4.4 describes.
type Executor struct {
	Store     *repo.Store
	Providers Providers
	Breakers  *BreakerSet
	Logger    logging.Logger
	Now       func() time.Time
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// Execute runs one task to completion (spec.md §4.4): set IN_PROGRESS,
// dispatch, persist the Category A/B result or the failure, and on
// failure pause the owning CronJob with PauseType=TASK_FAILURE.
func (e *Executor) Execute(ctx context.Context, cronJobID uuid.UUID, task *domain.ReleaseTask, ec ExecContext) error {
	handler, ok := dispatchTable[task.TaskType]
	if !ok {
		return errs.New(errs.Fatal, "EXECUTOR_UNKNOWN_TASK_TYPE", "no dispatch handler registered for task type "+string(task.TaskType))
	}

	inProgress := domain.TaskStatusInProgress
	if err := e.Store.Tasks.Update(ctx, task.ID, repo.ReleaseTaskPatch{TaskStatus: &inProgress}); err != nil {
		return errs.Wrap(errs.Fatal, "EXECUTOR_PERSIST_IN_PROGRESS", "failed to mark task in progress", err)
	}
	task.TaskStatus = domain.TaskStatusInProgress

	res, err := handler(ctx, e, task, ec)
	now := e.now()

	if err != nil {
		task.MarkFailed(err, now)
		failedStatus := task.TaskStatus
		extID := task.ExternalID
		extData := task.ExternalData
		if uerr := e.Store.Tasks.Update(ctx, task.ID, repo.ReleaseTaskPatch{
			TaskStatus:   &failedStatus,
			ExternalID:   &extID,
			ExternalData: &extData,
		}); uerr != nil {
			e.Logger.Error("failed to persist task failure", logging.NewField("taskId", task.ID), logging.NewField("cause", uerr.Error()))
		}

		pauseType := domain.PauseTypeTaskFailure
		cronStatus := domain.CronStatusPaused
		if uerr := e.Store.CronJobs.Update(ctx, cronJobID, repo.CronJobPatch{
			PauseType:  &pauseType,
			CronStatus: &cronStatus,
		}); uerr != nil {
			e.Logger.Error("failed to pause cron job after task failure", logging.NewField("cronJobId", cronJobID), logging.NewField("cause", uerr.Error()))
		}

		e.Logger.Warn("task failed", logging.NewField("taskId", task.ID), logging.NewField("taskType", task.TaskType), logging.NewField("cause", err.Error()))
		return errs.Wrap(errs.ProviderFailure, "EXECUTOR_TASK_FAILED", "task execution failed", err)
	}

	if domain.CategoryOf(task.TaskType) == domain.CategoryA {
		externalID := ""
		if res.ExternalID != nil {
			externalID = *res.ExternalID
		}
		task.MarkCompletedCategoryA(externalID, res.Data, now)
	} else {
		task.MarkCompletedCategoryB(res.Data, now)
	}

	completed := task.TaskStatus
	extID := task.ExternalID
	extData := task.ExternalData
	if uerr := e.Store.Tasks.Update(ctx, task.ID, repo.ReleaseTaskPatch{
		TaskStatus:   &completed,
		ExternalID:   &extID,
		ExternalData: &extData,
	}); uerr != nil {
		return errs.Wrap(errs.Fatal, "EXECUTOR_PERSIST_RESULT", "failed to persist task result", uerr)
	}

	e.Logger.Info("task completed", logging.NewField("taskId", task.ID), logging.NewField("taskType", task.TaskType))
	return nil
}

// alreadyDispatched reports whether a prior attempt already recorded an
// externalId, supporting the at-least-once idempotency contract in
// spec.md §4.4: non-idempotent trigger calls must not fire twice just
// because a crash lost the in-memory result before persisting.
func alreadyDispatched(task *domain.ReleaseTask) (string, bool) {
	if task.ExternalID == nil || *task.ExternalID == "" {
		return "", false
	}
	return *task.ExternalID, true
}
