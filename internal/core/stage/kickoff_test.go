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
	"releaseorchestrator/internal/core/executor"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
	"releaseorchestrator/pkg/providers/cicd"
	"releaseorchestrator/pkg/providers/messaging"
	"releaseorchestrator/pkg/providers/pmticket"
	"releaseorchestrator/pkg/providers/scm"
	"releaseorchestrator/pkg/providers/testmgmt"
	"releaseorchestrator/pkg/store/memory"
)

type noopSCM struct{}

func (noopSCM) ID() string { return "noop-scm" }
func (noopSCM) ForkBranch(ctx context.Context, opts scm.ForkBranchOptions) error { return nil }
func (noopSCM) CreateTag(ctx context.Context, opts scm.CreateTagOptions) error   { return nil }
func (noopSCM) CreateReleaseNotes(ctx context.Context, opts scm.CreateReleaseNotesOptions) (string, error) {
	return "", nil
}
func (noopSCM) CheckCherryPicks(ctx context.Context, opts scm.CherryPickCheckOptions) (scm.CherryPickCheckResult, error) {
	return scm.CherryPickCheckResult{}, nil
}

type noopMessaging struct{}

func (noopMessaging) ID() string { return "noop-messaging" }
func (noopMessaging) SendNotification(ctx context.Context, n messaging.Notification) error {
	return nil
}

type noopPMTicket struct{}

func (noopPMTicket) ID() string { return "noop-pmticket" }
func (noopPMTicket) CreateTickets(ctx context.Context, opts pmticket.CreateTicketsOptions) ([]pmticket.TicketResult, error) {
	return []pmticket.TicketResult{{Key: "TICK-1"}}, nil
}
func (noopPMTicket) CheckTicketStatus(ctx context.Context, key string) (pmticket.TicketResult, error) {
	return pmticket.TicketResult{Key: key}, nil
}

type noopTestMgmt struct{}

func (noopTestMgmt) ID() string { return "noop-testmgmt" }
func (noopTestMgmt) CreateTestRuns(ctx context.Context, opts testmgmt.CreateTestRunsOptions) ([]testmgmt.TestRunResult, error) {
	return []testmgmt.TestRunResult{{RunID: "RUN-1"}}, nil
}
func (noopTestMgmt) ResetTestRun(ctx context.Context, runID string) (testmgmt.TestRunResult, error) {
	return testmgmt.TestRunResult{RunID: runID}, nil
}
func (noopTestMgmt) GetTestStatus(ctx context.Context, runID string) (testmgmt.TestStatusResult, error) {
	return testmgmt.TestStatusResult{}, nil
}

type noopCICD struct{}

func (noopCICD) ID() string { return "noop-cicd" }
func (noopCICD) Trigger(ctx context.Context, opts cicd.TriggerOptions) (cicd.TriggerResult, error) {
	return cicd.TriggerResult{RunID: "BUILD-1"}, nil
}
func (noopCICD) GetStatus(ctx context.Context, runID string) (cicd.StatusResult, error) {
	return cicd.StatusResult{}, nil
}
func (noopCICD) FindDispatchedRun(ctx context.Context, opts cicd.TriggerOptions) (cicd.TriggerResult, bool, error) {
	return cicd.TriggerResult{}, false, nil
}

func newTestDeps(t *testing.T, release *domain.Release, cronJob *domain.CronJob) Deps {
	t.Helper()
	store := &repo.Store{
		CronJobs:         memory.NewCronJobRepo(),
		Releases:         memory.NewReleaseRepo(),
		Tasks:            memory.NewReleaseTaskRepo(),
		RegressionCycles: memory.NewRegressionCycleRepo(),
	}
	store.CronJobs.(*memory.CronJobRepo).Put(cronJob)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	exec := &executor.Executor{
		Store: store,
		Providers: executor.Providers{
			SCM:       noopSCM{},
			CICD:      noopCICD{},
			PMTicket:  noopPMTicket{},
			TestMgmt:  noopTestMgmt{},
			Messaging: noopMessaging{},
		},
		Breakers: executor.NewBreakerSet(),
		Logger:   logging.NewLogger(false),
		Now:      func() time.Time { return now },
	}

	return Deps{
		Store:    store,
		Executor: exec,
		Logger:   logging.NewLogger(false),
		Now:      func() time.Time { return now },
		Release:  release,
		CronJob:  cronJob,
	}
}

func TestKickoff_Execute_CreatesTasksOnFirstTick(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)

	k := NewKickoff(deps)
	require.NoError(t, k.Execute(ctx))

	tasks, err := deps.Store.Tasks.FindByReleaseAndStage(ctx, release.ID, domain.TaskStageKickoff)
	require.NoError(t, err)
	assert.Len(t, tasks, 3, "PreKickOffReminder and pre-regression builds are disabled by default CronConfig")
}

func TestKickoff_Execute_DispatchesFirstEligibleTask(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)

	k := NewKickoff(deps)
	require.NoError(t, k.Execute(ctx))

	forkTask, err := deps.Store.Tasks.FindByTaskType(ctx, release.ID, domain.TaskTypeForkBranch)
	require.NoError(t, err)
	require.NotNil(t, forkTask)
	assert.Equal(t, domain.TaskStatusCompleted, forkTask.TaskStatus)
}

func TestKickoff_Execute_SkipsForkBranchBeforeKickOffDate(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{
		ID:          uuid.New(),
		Branch:      "release/1.0",
		BaseBranch:  "main",
		KickOffDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)

	k := NewKickoff(deps)
	require.NoError(t, k.Execute(ctx))

	forkTask, err := deps.Store.Tasks.FindByTaskType(ctx, release.ID, domain.TaskTypeForkBranch)
	require.NoError(t, err)
	require.NotNil(t, forkTask)
	assert.Equal(t, domain.TaskStatusPending, forkTask.TaskStatus, "kick-off date has not arrived yet")
}

func TestKickoff_Execute_DispatchesForkBranchOnceKickOffDateArrives(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{
		ID:          uuid.New(),
		Branch:      "release/1.0",
		BaseBranch:  "main",
		KickOffDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)

	k := NewKickoff(deps)
	require.NoError(t, k.Execute(ctx))

	forkTask, err := deps.Store.Tasks.FindByTaskType(ctx, release.ID, domain.TaskTypeForkBranch)
	require.NoError(t, err)
	require.NotNil(t, forkTask)
	assert.Equal(t, domain.TaskStatusCompleted, forkTask.TaskStatus)
}

func TestKickoff_IsComplete_FalseUntilAllRequiredTasksComplete(t *testing.T) {
	ctx := context.Background()
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main"}
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: release.ID}
	deps := newTestDeps(t, release, cronJob)
	k := NewKickoff(deps)

	require.NoError(t, k.Execute(ctx))
	complete, err := k.IsComplete(ctx)
	require.NoError(t, err)
	assert.False(t, complete, "only the first task has run")

	for i := 0; i < len(domain.KickoffTaskOrder); i++ {
		require.NoError(t, k.Execute(ctx))
	}
	complete, err = k.IsComplete(ctx)
	require.NoError(t, err)
	assert.True(t, complete)
}
