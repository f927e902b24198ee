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

// Feature: CORE_STAGE_PRERELEASE
// Spec: spec/core/stages.md#prerelease

// PreRelease implements Stage 3 (spec.md §4.5.3, §6.1): tag the release,
// generate final notes, optionally trigger a TestFlight build when an
// iOS platform mapping exists, and confirm release approval.
type PreRelease struct {
	Deps
}

func NewPreRelease(d Deps) *PreRelease { return &PreRelease{Deps: d} }

func (p *PreRelease) Name() domain.TaskStage { return domain.TaskStagePostRegression }

func (p *PreRelease) order() []domain.TaskTypeOrder {
	order := domain.OrderFor(domain.TaskStagePostRegression, true)
	hasIOS := domain.HasPlatform(p.Mappings, domain.PlatformIOS)
	filtered := make([]domain.TaskTypeOrder, 0, len(order))
	for _, entry := range order {
		if entry.Type == domain.TaskTypeTriggerTestFlightBuild && !hasIOS {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func (p *PreRelease) Execute(ctx context.Context) error {
	tasks, err := p.Store.Tasks.FindByReleaseAndStage(ctx, p.Release.ID, domain.TaskStagePostRegression)
	if err != nil {
		return err
	}

	order := p.order()
	cfg := p.CronJob.CronConfig

	if len(tasks) == 0 {
		created := buildTasks(p.Release.ID, nil, domain.TaskStagePostRegression, order, cfg, p.now())
		if err := p.Store.Tasks.BulkCreate(ctx, created); err != nil {
			return err
		}
		tasks = created
	}

	next := nextEligibleTask(order, cfg, tasks)
	if next == nil {
		return nil
	}

	cycleTag := ""
	if latest, err := p.Store.RegressionCycles.FindLatest(ctx, p.Release.ID); err == nil && latest != nil {
		cycleTag = latest.CycleTag
	}

	return p.Executor.Execute(ctx, p.CronJob.ID, next, executor.ExecContext{
		Release:    p.Release,
		Mappings:   p.Mappings,
		CycleTag:   cycleTag,
		CronConfig: cfg,
	})
}

func (p *PreRelease) IsComplete(ctx context.Context) (bool, error) {
	tasks, err := p.Store.Tasks.FindByReleaseAndStage(ctx, p.Release.ID, domain.TaskStagePostRegression)
	if err != nil {
		return false, err
	}
	return allRequiredComplete(p.order(), p.CronJob.CronConfig, tasks), nil
}
