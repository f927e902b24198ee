// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package orchestrator drives one CronJob's state machine for one tick
// (spec.md §4.6): pick the active stage, execute it, and transition
// forward when it completes and its auto-transition flag allows it.
package orchestrator

import (
	"context"
	"time"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/executor"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/internal/core/stage"
	"releaseorchestrator/pkg/logging"
)

// Feature: CORE_ORCHESTRATOR
// Spec: spec/core/orchestrator.md

// Orchestrator runs a single CronJob to one tick's completion.
// Generalized from the teacher's re-architecture note (spec.md §9) to
// take every collaborator through its constructor rather than via
// package-level singletons.
type Orchestrator struct {
	Store    *repo.Store
	Executor *executor.Executor
	Logger   logging.Logger
	Now      func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Run executes one tick for the release identified by cronJob (spec.md
// §4.6). It is safe to call only while the caller holds the release's
// lease (spec.md §4.3).
func (o *Orchestrator) Run(ctx context.Context, cronJob *domain.CronJob) error {
	release, err := o.Store.Releases.FindByID(ctx, cronJob.ReleaseID)
	if err != nil {
		return err
	}
	if release.Status.IsTerminal() {
		return nil
	}
	if cronJob.PauseType != domain.PauseTypeNone && cronJob.PauseType != domain.PauseTypeAwaitingStageTrigger {
		// USER_REQUESTED and TASK_FAILURE pauses halt ticking entirely
		// until the Service API clears them (spec.md §4.8).
		return nil
	}

	if cronJob.InProgressStageCount() > 1 {
		return errs.New(errs.Corruption, "ORCHESTRATOR_MULTIPLE_IN_PROGRESS_STAGES", "more than one stage is IN_PROGRESS for this cron job")
	}

	mappings, err := o.Store.PlatformMappings.FindByReleaseID(ctx, release.ID)
	if err != nil {
		return err
	}

	deps := stage.Deps{
		Store:    o.Store,
		Executor: o.Executor,
		Logger:   o.Logger,
		Now:      o.Now,
		Release:  release,
		CronJob:  cronJob,
		Mappings: mappings,
	}

	current, ok, awaitingTrigger := o.selectStage(cronJob, deps)
	if !ok {
		if awaitingTrigger && cronJob.PauseType != domain.PauseTypeAwaitingStageTrigger {
			return o.pauseAwaitingStageTrigger(ctx, cronJob)
		}
		return nil
	}

	if cronJob.StageStatus(current.Name()) == domain.StageStatusPending {
		cronJob.SetStageStatus(current.Name(), domain.StageStatusInProgress)
		status := domain.StageStatusInProgress
		if err := o.patchStage(ctx, cronJob, current.Name(), status); err != nil {
			return err
		}
	}

	if err := current.Execute(ctx); err != nil {
		return err
	}

	complete, err := current.IsComplete(ctx)
	if err != nil {
		return err
	}
	if !complete {
		return nil
	}

	cronJob.SetStageStatus(current.Name(), domain.StageStatusCompleted)
	if err := o.patchStage(ctx, cronJob, current.Name(), domain.StageStatusCompleted); err != nil {
		return err
	}

	return o.maybeFinishRelease(ctx, release, cronJob)
}

// selectStage implements spec.md §4.6's state selection rule: resume an
// IN_PROGRESS stage, or move to the first PENDING stage whose
// predecessor is COMPLETED and whose auto-transition flag allows it.
// The third return value reports whether the false/false case is a
// genuine manual stage gate (spec.md §4.5.1/§4.5.2: "not auto" branch)
// as opposed to a release that has already finished its last stage.
func (o *Orchestrator) selectStage(cronJob *domain.CronJob, deps stage.Deps) (current stage.Stage, ok bool, awaitingTrigger bool) {
	kickoff := stage.NewKickoff(deps)
	regression := stage.NewRegression(deps)
	prerelease := stage.NewPreRelease(deps)

	switch {
	case cronJob.Stage1Status == domain.StageStatusInProgress:
		return kickoff, true, false
	case cronJob.Stage2Status == domain.StageStatusInProgress:
		return regression, true, false
	case cronJob.Stage3Status == domain.StageStatusInProgress:
		return prerelease, true, false
	}

	if cronJob.Stage1Status == domain.StageStatusPending {
		return kickoff, true, false
	}

	if cronJob.Stage1Status == domain.StageStatusCompleted && cronJob.Stage2Status == domain.StageStatusPending {
		if !cronJob.AutoTransitionToStage2 {
			return nil, false, true
		}
		return regression, true, false
	}

	if cronJob.Stage2Status == domain.StageStatusCompleted && cronJob.Stage3Status == domain.StageStatusPending {
		// A pending regression slot keeps Stage 2 authoritative even
		// after it is nominally COMPLETED (spec.md §4.5.2 priority rule).
		// This is an automatic continuation, not a manual gate, so it
		// never pauses the cron job awaiting a trigger.
		if cronJob.HasPendingSlot() {
			return regression, true, false
		}
		if !cronJob.AutoTransitionToStage3 {
			return nil, false, true
		}
		return prerelease, true, false
	}

	return nil, false, false
}

// pauseAwaitingStageTrigger implements the manual stage-gate transition
// (spec.md §4.5.1/§4.5.2): when a stage completes without its
// auto-transition flag set, the cron job stops ticking until the
// Service API's triggerStage2/triggerStage3 operation clears the pause.
func (o *Orchestrator) pauseAwaitingStageTrigger(ctx context.Context, cronJob *domain.CronJob) error {
	cronStatus := domain.CronStatusPaused
	pauseType := domain.PauseTypeAwaitingStageTrigger
	if err := o.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{
		CronStatus: &cronStatus,
		PauseType:  &pauseType,
	}); err != nil {
		return err
	}
	cronJob.CronStatus = cronStatus
	cronJob.PauseType = pauseType
	return nil
}

func (o *Orchestrator) patchStage(ctx context.Context, cronJob *domain.CronJob, name domain.TaskStage, status domain.StageStatus) error {
	patch := repo.CronJobPatch{}
	switch name {
	case domain.TaskStageKickoff:
		patch.Stage1Status = &status
	case domain.TaskStageRegression:
		patch.Stage2Status = &status
	case domain.TaskStagePostRegression:
		patch.Stage3Status = &status
	}
	return o.Store.CronJobs.Update(ctx, cronJob.ID, patch)
}

// maybeFinishRelease marks the release COMPLETED and the cron job
// COMPLETED once Pre-Release has finished (spec.md §4.5.3, §6.1).
func (o *Orchestrator) maybeFinishRelease(ctx context.Context, release *domain.Release, cronJob *domain.CronJob) error {
	if cronJob.Stage3Status != domain.StageStatusCompleted {
		return nil
	}
	completed := domain.ReleaseStatusCompleted
	if err := o.Store.Releases.Update(ctx, release.ID, repo.ReleasePatch{Status: &completed}); err != nil {
		return err
	}
	cronStatus := domain.CronStatusCompleted
	return o.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{CronStatus: &cronStatus})
}
