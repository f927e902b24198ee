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

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/executor"
)

// Feature: CORE_STAGE_KICKOFF
// Spec: spec/core/stages.md#kickoff

// Kickoff implements Stage 1 (spec.md §4.5.1, §6.1): fork the release
// branch, create the PM ticket and test suite, and optionally send a
// reminder and trigger pre-regression builds.
type Kickoff struct {
	Deps
}

func NewKickoff(d Deps) *Kickoff { return &Kickoff{Deps: d} }

func (k *Kickoff) Name() domain.TaskStage { return domain.TaskStageKickoff }

func (k *Kickoff) Execute(ctx context.Context) error {
	tasks, err := k.Store.Tasks.FindByReleaseAndStage(ctx, k.Release.ID, domain.TaskStageKickoff)
	if err != nil {
		return err
	}

	order := domain.OrderFor(domain.TaskStageKickoff, true)
	cfg := k.CronJob.CronConfig

	if len(tasks) == 0 {
		created := buildTasks(k.Release.ID, nil, domain.TaskStageKickoff, order, cfg, k.now())
		if err := k.Store.Tasks.BulkCreate(ctx, created); err != nil {
			return err
		}
		tasks = created
	}

	next := nextEligibleTask(order, cfg, tasks)
	if next == nil {
		return nil
	}
	if dateGated(next.TaskType, k.Release, k.now()) {
		return nil
	}

	return k.Executor.Execute(ctx, k.CronJob.ID, next, executor.ExecContext{
		Release:  k.Release,
		Mappings: k.Mappings,
	})
}

func (k *Kickoff) IsComplete(ctx context.Context) (bool, error) {
	tasks, err := k.Store.Tasks.FindByReleaseAndStage(ctx, k.Release.ID, domain.TaskStageKickoff)
	if err != nil {
		return false, err
	}
	return allRequiredComplete(domain.OrderFor(domain.TaskStageKickoff, true), k.CronJob.CronConfig, tasks), nil
}
