// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package stage implements the three release stages (spec.md §4.5):
// Kickoff, Regression, and Pre-Release. Each stage type owns the task
// creation and dispatch logic for its slice of a CronJob's lifecycle;
// the orchestrator package picks which stage runs on a given tick.
package stage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/executor"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
)

// Feature: CORE_STAGE_COMMON
// Spec: spec/core/stages.md

// Stage is the capability set the orchestrator drives (spec.md §4.5,
// §4.6): run one unit of work and report completion.
type Stage interface {
	Name() domain.TaskStage
	// Execute performs one tick's worth of work for this stage: creating
	// tasks if none exist yet, and dispatching the next eligible pending
	// task to the Task Executor.
	Execute(ctx context.Context) error
	// IsComplete reports whether this stage's work is done: for Kickoff
	// and PreRelease every required task is COMPLETED; for Regression the
	// latest cycle is DONE and no slot is queued.
	IsComplete(ctx context.Context) (bool, error)
}

// Deps bundles the collaborators every stage needs, generalized from the
// teacher's constructor-injection re-architecture note (spec.md §9):
// "explicit constructor injection instead of singletons."
type Deps struct {
	Store     *repo.Store
	Executor  *executor.Executor
	Logger    logging.Logger
	Now       func() time.Time
	Release   *domain.Release
	CronJob   *domain.CronJob
	Mappings  []domain.PlatformTargetMapping
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

// nextEligibleTask scans tasks in declared order and returns the first
// one that is not yet terminal and whose prior required tasks are all
// COMPLETED (spec.md §4.4: "only execute if all prior required tasks in
// stage/cycle are COMPLETED").
func nextEligibleTask(order []domain.TaskTypeOrder, cfg domain.CronConfig, tasks []*domain.ReleaseTask) *domain.ReleaseTask {
	byType := make(map[domain.TaskType]*domain.ReleaseTask, len(tasks))
	for _, t := range tasks {
		byType[t.TaskType] = t
	}

	for i, entry := range order {
		if !entry.IsRequired(cfg) {
			continue
		}
		task, ok := byType[entry.Type]
		if !ok {
			continue
		}
		if task.TaskStatus.IsTerminal() {
			continue
		}
		if task.TaskStatus == domain.TaskStatusInProgress {
			return nil
		}
		if priorRequiredComplete(order[:i], cfg, byType) {
			return task
		}
		return nil
	}
	return nil
}

// dateGated reports whether a task type's scheduled moment (spec.md
// §4.5.1) has not yet arrived, meaning it must not be dispatched on this
// tick even though ordering and priors would otherwise allow it.
// TaskTypePreKickOffReminder waits for release.KickOffReminderDate and
// TaskTypeForkBranch waits for release.KickOffDate; every other task
// type is ungated.
func dateGated(taskType domain.TaskType, release *domain.Release, now time.Time) bool {
	switch taskType {
	case domain.TaskTypePreKickOffReminder:
		return now.Before(release.KickOffReminderDate)
	case domain.TaskTypeForkBranch:
		return now.Before(release.KickOffDate)
	default:
		return false
	}
}

func priorRequiredComplete(priors []domain.TaskTypeOrder, cfg domain.CronConfig, byType map[domain.TaskType]*domain.ReleaseTask) bool {
	for _, p := range priors {
		if !p.IsRequired(cfg) {
			continue
		}
		t, ok := byType[p.Type]
		if !ok || t.TaskStatus != domain.TaskStatusCompleted {
			return false
		}
	}
	return true
}

// allRequiredComplete reports whether every required task in order is
// COMPLETED.
func allRequiredComplete(order []domain.TaskTypeOrder, cfg domain.CronConfig, tasks []*domain.ReleaseTask) bool {
	byType := make(map[domain.TaskType]*domain.ReleaseTask, len(tasks))
	for _, t := range tasks {
		byType[t.TaskType] = t
	}
	for _, entry := range order {
		if !entry.IsRequired(cfg) {
			continue
		}
		t, ok := byType[entry.Type]
		if !ok || t.TaskStatus != domain.TaskStatusCompleted {
			return false
		}
	}
	return true
}

// buildTasks materializes a ReleaseTask row per required entry in order,
// skipping entries disabled by cfg.
func buildTasks(releaseID uuid.UUID, regressionID *uuid.UUID, stage domain.TaskStage, order []domain.TaskTypeOrder, cfg domain.CronConfig, now time.Time) []*domain.ReleaseTask {
	tasks := make([]*domain.ReleaseTask, 0, len(order))
	for _, entry := range order {
		if !entry.IsRequired(cfg) {
			continue
		}
		tasks = append(tasks, &domain.ReleaseTask{
			ID:           uuid.New(),
			ReleaseID:    releaseID,
			RegressionID: regressionID,
			TaskType:     entry.Type,
			Stage:        stage,
			TaskStatus:   domain.TaskStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return tasks
}

var errNoEligibleTask = errs.New(errs.Conflict, "STAGE_NO_ELIGIBLE_TASK", "no eligible pending task for this stage tick")
