// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package stage

import (
	"context"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/executor"
	"releaseorchestrator/internal/core/repo"
)

// Feature: CORE_STAGE_REGRESSION
// Spec: spec/core/stages.md#regression

// Regression implements Stage 2 (spec.md §4.5.2, §6.1): a loop of
// RegressionCycles, each popped from the CronJob's ordered
// upcomingRegressions slot list as it comes due.
type Regression struct {
	Deps
}

func NewRegression(d Deps) *Regression { return &Regression{Deps: d} }

func (r *Regression) Name() domain.TaskStage { return domain.TaskStageRegression }

func (r *Regression) Execute(ctx context.Context) error {
	latest, err := r.Store.RegressionCycles.FindLatest(ctx, r.Release.ID)
	if err != nil {
		return err
	}

	if !latest.IsActive() {
		return r.startNextCycleIfDue(ctx, latest)
	}

	return r.advanceCycle(ctx, latest)
}

// startNextCycleIfDue pops the earliest due slot and materializes a new
// RegressionCycle plus its task set. If no slot is due yet, it is a
// no-op for this tick.
func (r *Regression) startNextCycleIfDue(ctx context.Context, previous *domain.RegressionCycle) error {
	slot, ok := r.CronJob.PopDueSlot(r.now())
	if !ok {
		return nil
	}

	cycleCount, err := r.Store.RegressionCycles.GetCycleCount(ctx, r.Release.ID)
	if err != nil {
		return err
	}
	tagCount, err := r.Store.RegressionCycles.GetTagCount(ctx, r.Release.ID)
	if err != nil {
		return err
	}
	firstCycle := cycleCount == 0

	version := ""
	if len(r.Mappings) > 0 {
		version = r.Mappings[0].Version
	}

	cycle := &domain.RegressionCycle{
		ID:         uuid.New(),
		ReleaseID:  r.Release.ID,
		CycleTag:   domain.NextCycleTag(version, tagCount),
		Status:     domain.RegressionCycleStarted,
		IsLatest:   true,
		FirstCycle: firstCycle,
		Config:     slot.Config,
		CreatedAt:  r.now(),
		UpdatedAt:  r.now(),
	}
	if err := r.Store.RegressionCycles.Create(ctx, cycle); err != nil {
		return err
	}
	if previous != nil && previous.IsLatest {
		notLatest := false
		if err := r.Store.RegressionCycles.Update(ctx, previous.ID, repo.RegressionCyclePatch{IsLatest: &notLatest}); err != nil {
			return err
		}
	}

	order := domain.OrderFor(domain.TaskStageRegression, firstCycle)
	regressionID := cycle.ID
	tasks := buildTasks(r.Release.ID, &regressionID, domain.TaskStageRegression, order, slot.Config, r.now())
	if err := r.Store.Tasks.BulkCreate(ctx, tasks); err != nil {
		return err
	}

	upcoming := r.CronJob.UpcomingRegressions
	return r.Store.CronJobs.Update(ctx, r.CronJob.ID, repo.CronJobPatch{UpcomingRegressions: &upcoming})
}

func (r *Regression) advanceCycle(ctx context.Context, cycle *domain.RegressionCycle) error {
	tasks, err := r.Store.Tasks.FindByRegressionCycle(ctx, cycle.ID)
	if err != nil {
		return err
	}

	order := domain.OrderFor(domain.TaskStageRegression, cycle.FirstCycle)

	if allRequiredComplete(order, cycle.Config, tasks) {
		done := domain.RegressionCycleDone
		return r.Store.RegressionCycles.Update(ctx, cycle.ID, repo.RegressionCyclePatch{Status: &done})
	}

	next := nextEligibleTask(order, cycle.Config, tasks)
	if next == nil {
		return nil
	}

	return r.Executor.Execute(ctx, r.CronJob.ID, next, executor.ExecContext{
		Release:  r.Release,
		Mappings: r.Mappings,
		CycleTag: cycle.CycleTag,
	})
}

// IsComplete implements the priority rule in spec.md §4.5.2: Regression
// stays incomplete while any slot remains queued, even if the latest
// cycle is DONE, so a flexible regression override can never be skipped
// by an auto-transition to Pre-Release.
func (r *Regression) IsComplete(ctx context.Context) (bool, error) {
	if r.CronJob.HasPendingSlot() {
		return false, nil
	}
	latest, err := r.Store.RegressionCycles.FindLatest(ctx, r.Release.ID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	return latest.Status == domain.RegressionCycleDone, nil
}
