// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
	"releaseorchestrator/pkg/store/memory"
)

type fakeArtifacts struct {
	saved map[string][]byte
}

func (f *fakeArtifacts) Save(ctx context.Context, releaseID uuid.UUID, filename string, data []byte) (string, string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	path := "artifacts/" + releaseID.String() + "/" + filename
	f.saved[path] = data
	return path, "https://downloads.example.com/" + path, nil
}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := &Service{
		Store:     store.AsRepoStore(),
		Artifacts: &fakeArtifacts{},
		Validate:  validator.New(),
		Logger:    logging.NewLogger(false),
		Now:       func() time.Time { return now },
	}
	return svc, store
}

func seedRelease(store *memory.Store, status domain.ReleaseStatus) *domain.Release {
	release := &domain.Release{ID: uuid.New(), Branch: "release/1.0", BaseBranch: "main", Status: status, CreatedByAccountID: "acct-1"}
	store.Releases.Put(release)
	return release
}

func seedCronJob(store *memory.Store, releaseID uuid.UUID) *domain.CronJob {
	cronJob := &domain.CronJob{ID: uuid.New(), ReleaseID: releaseID, CronStatus: domain.CronStatusPending}
	store.CronJobs.Put(cronJob)
	return cronJob
}

func TestService_Start_MarksStage1InProgressAndReleaseInProgress(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusPending)
	seedCronJob(store, release.ID)

	res := svc.Start(ctx, StartInput{ReleaseID: release.ID})
	require.True(t, res.Success)
	assert.Equal(t, domain.ReleaseStatusInProgress, res.Data.Status)

	cronJob, err := store.CronJobs.FindByReleaseID(ctx, release.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageStatusInProgress, cronJob.Stage1Status)
	assert.Equal(t, domain.CronStatusRunning, cronJob.CronStatus)
}

func TestService_Start_RejectsTerminalRelease(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusArchived)
	seedCronJob(store, release.ID)

	res := svc.Start(ctx, StartInput{ReleaseID: release.ID})
	assert.False(t, res.Success)
	assert.Equal(t, "CONFLICT", res.ErrorCode)
}

func TestService_Start_RejectsAlreadyRunning(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusPending)
	cronJob := seedCronJob(store, release.ID)
	running := domain.CronStatusRunning
	require.NoError(t, store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{CronStatus: &running}))

	res := svc.Start(ctx, StartInput{ReleaseID: release.ID})
	assert.False(t, res.Success)
}

func TestService_Start_ValidationFailsOnZeroReleaseID(t *testing.T) {
	svc, _ := newTestService(t)
	res := svc.Start(context.Background(), StartInput{})
	assert.False(t, res.Success)
	assert.Equal(t, "VALIDATION", res.ErrorCode)
}

func TestService_Pause_SetsUserRequestedPause(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	seedCronJob(store, release.ID)

	res := svc.Pause(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.PauseTypeUserRequested, res.Data.PauseType)
}

func TestService_Pause_IsIdempotentWhenAlreadyPaused(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	seedCronJob(store, release.ID)

	first := svc.Pause(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"})
	require.True(t, first.Success)
	second := svc.Pause(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"})
	require.True(t, second.Success)
	assert.Equal(t, domain.PauseTypeUserRequested, second.Data.PauseType)
}

func TestService_Pause_RejectsReleaseNotInProgress(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusPending)
	seedCronJob(store, release.ID)

	res := svc.Pause(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"})
	assert.False(t, res.Success)
}

func TestService_Resume_ClearsUserRequestedPause(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	seedCronJob(store, release.ID)
	require.True(t, svc.Pause(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"}).Success)

	res := svc.Resume(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.PauseTypeNone, res.Data.PauseType)
}

func TestService_Resume_RefusesTaskFailurePause(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	cronJob := seedCronJob(store, release.ID)
	taskFailure := domain.PauseTypeTaskFailure
	require.NoError(t, store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{PauseType: &taskFailure}))

	res := svc.Resume(ctx, PauseInput{ReleaseID: release.ID, TenantID: "t1", AccountID: "acct-1"})
	assert.False(t, res.Success)
}

func TestService_TriggerStage2_RequiresStage1CompletedAndStage2Pending(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	cronJob := seedCronJob(store, release.ID)
	stage1Complete := domain.StageStatusCompleted
	require.NoError(t, store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{Stage1Status: &stage1Complete}))

	res := svc.TriggerStage2(ctx, TriggerStageInput{ReleaseID: release.ID, AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.StageStatusInProgress, res.Data.Stage2Status)
	assert.True(t, res.Data.AutoTransitionToStage2)
}

func TestService_TriggerStage2_RejectsWhenStage1NotComplete(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	seedCronJob(store, release.ID)

	res := svc.TriggerStage2(ctx, TriggerStageInput{ReleaseID: release.ID, AccountID: "acct-1"})
	assert.False(t, res.Success)
}

func TestService_TriggerStage3_RequiresStage2CompletedAndStage3Pending(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	cronJob := seedCronJob(store, release.ID)
	stage1Complete := domain.StageStatusCompleted
	stage2Complete := domain.StageStatusCompleted
	require.NoError(t, store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{Stage1Status: &stage1Complete}))
	require.NoError(t, store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{Stage2Status: &stage2Complete}))

	res := svc.TriggerStage3(ctx, TriggerStageInput{ReleaseID: release.ID, AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.StageStatusInProgress, res.Data.Stage3Status)
}

func TestService_Archive_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusArchived)
	seedCronJob(store, release.ID)

	res := svc.Archive(ctx, ArchiveInput{ReleaseID: release.ID, AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.ReleaseStatusArchived, res.Data.Status)
}

func TestService_Archive_MarksReleaseAndCronJobTerminal(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	seedCronJob(store, release.ID)

	res := svc.Archive(ctx, ArchiveInput{ReleaseID: release.ID, AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.ReleaseStatusArchived, res.Data.Status)

	cronJob, err := store.CronJobs.FindByReleaseID(ctx, release.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CronStatusCompleted, cronJob.CronStatus)
}

func TestService_RetryTask_ResetsFailedTaskAndClearsTaskFailurePause(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	cronJob := seedCronJob(store, release.ID)
	taskFailure := domain.PauseTypeTaskFailure
	paused := domain.CronStatusPaused
	require.NoError(t, store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{PauseType: &taskFailure, CronStatus: &paused}))

	task := &domain.ReleaseTask{
		ID:         uuid.New(),
		ReleaseID:  release.ID,
		TaskType:   domain.TaskTypeForkBranch,
		Stage:      domain.TaskStageKickoff,
		TaskStatus: domain.TaskStatusFailed,
	}
	require.NoError(t, store.Tasks.BulkCreate(ctx, []*domain.ReleaseTask{task}))

	res := svc.RetryTask(ctx, RetryTaskInput{TaskID: task.ID, AccountID: "acct-1"})
	require.True(t, res.Success)
	assert.Equal(t, domain.TaskStatusPending, res.Data.TaskStatus)

	refreshedCronJob, err := store.CronJobs.FindByReleaseID(ctx, release.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PauseTypeNone, refreshedCronJob.PauseType)
	assert.Equal(t, domain.CronStatusRunning, refreshedCronJob.CronStatus, "retry must re-admit the release to FindRunningCandidates")
}

func TestService_RetryTask_RejectsNonFailedTask(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	task := &domain.ReleaseTask{
		ID:         uuid.New(),
		ReleaseID:  release.ID,
		TaskType:   domain.TaskTypeForkBranch,
		Stage:      domain.TaskStageKickoff,
		TaskStatus: domain.TaskStatusPending,
	}
	require.NoError(t, store.Tasks.BulkCreate(ctx, []*domain.ReleaseTask{task}))

	res := svc.RetryTask(ctx, RetryTaskInput{TaskID: task.ID, AccountID: "acct-1"})
	assert.False(t, res.Success)
}

func TestService_UploadManualBuild_RejectsInvalidExtension(t *testing.T) {
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)

	res := svc.UploadManualBuild(context.Background(), UploadManualBuildInput{
		ReleaseID: release.ID,
		Stage:     domain.TaskStagePostRegression,
		Platform:  domain.PlatformIOS,
		FileBytes: []byte("not-a-build"),
		Filename:  "build.txt",
		AccountID: "acct-1",
	})
	assert.False(t, res.Success)
}

func TestService_UploadManualBuild_ComputesReadinessAcrossMappedPlatforms(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	release := seedRelease(store, domain.ReleaseStatusInProgress)
	store.PlatformMappings.Put(domain.PlatformTargetMapping{ID: uuid.New(), ReleaseID: release.ID, Platform: domain.PlatformIOS})
	store.PlatformMappings.Put(domain.PlatformTargetMapping{ID: uuid.New(), ReleaseID: release.ID, Platform: domain.PlatformAndroid})

	res := svc.UploadManualBuild(ctx, UploadManualBuildInput{
		ReleaseID: release.ID,
		Stage:     domain.TaskStagePostRegression,
		Platform:  domain.PlatformIOS,
		FileBytes: []byte("binary-bytes"),
		Filename:  "build.ipa",
		AccountID: "acct-1",
	})
	require.True(t, res.Success)
	assert.Contains(t, res.Data.UploadedPlatforms, domain.PlatformIOS)
	assert.Contains(t, res.Data.MissingPlatforms, domain.PlatformAndroid)
	assert.False(t, res.Data.AllPlatformsReady)
}
