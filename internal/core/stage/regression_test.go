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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"releaseorchestrator/internal/core/domain"
)

func TestRegression_Execute_NoopWithoutDueSlot(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{
		ID:        uuid.New(),
		ReleaseID: release.ID,
		UpcomingRegressions: []domain.RegressionSlot{
			{DueAt: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	deps := newTestDeps(t, release, cronJob)

	r := NewRegression(deps)
	require.NoError(t, r.Execute(ctx))

	latest, err := deps.Store.RegressionCycles.FindLatest(ctx, release.ID)
	require.NoError(t, err)
	assert.Nil(t, latest, "no cycle should start before its slot is due")
}

func TestRegression_Execute_StartsCycleWhenSlotDue(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{
		ID:        uuid.New(),
		ReleaseID: release.ID,
		UpcomingRegressions: []domain.RegressionSlot{
			{DueAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	deps := newTestDeps(t, release, cronJob)

	r := NewRegression(deps)
	require.NoError(t, r.Execute(ctx))

	latest, err := deps.Store.RegressionCycles.FindLatest(ctx, release.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.FirstCycle)
	assert.Equal(t, domain.RegressionCycleStarted, latest.Status)
	assert.False(t, cronJob.HasPendingSlot(), "the due slot must be consumed")

	tasks, err := deps.Store.Tasks.FindByRegressionCycle(ctx, latest.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, tasks)
}

func TestRegression_IsComplete_FalseWithPendingSlotEvenIfLatestDone(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)

	cycle := &domain.RegressionCycle{ID: uuid.New(), ReleaseID: release.ID, Status: domain.RegressionCycleDone, IsLatest: true}
	require.NoError(t, deps.Store.RegressionCycles.Create(ctx, cycle))

	cronJob.UpcomingRegressions = append(cronJob.UpcomingRegressions, domain.RegressionSlot{DueAt: time.Now().Add(24 * time.Hour)})

	r := NewRegression(deps)
	complete, err := r.IsComplete(ctx)
	require.NoError(t, err)
	assert.False(t, complete, "a pending slot keeps Regression incomplete even with a DONE latest cycle")
}

func TestRegression_IsComplete_TrueWhenLatestDoneAndNoPendingSlot(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)

	cycle := &domain.RegressionCycle{ID: uuid.New(), ReleaseID: release.ID, Status: domain.RegressionCycleDone, IsLatest: true}
	require.NoError(t, deps.Store.RegressionCycles.Create(ctx, cycle))

	r := NewRegression(deps)
	complete, err := r.IsComplete(ctx)
	require.NoError(t, err)
	assert.True(t, complete)
}
