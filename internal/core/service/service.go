// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package service implements the Service API (spec.md §4.8): the eight
// operations the external HTTP layer invokes, each mutating a single
// CronJob/Release atomically and auditing into StateHistory.
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
)

// Feature: CORE_SERVICE_API
// Spec: spec/core/service.md

// ArtifactStore persists the raw bytes of a manually-uploaded build
// (spec.md §4.8: uploadManualBuild). Concrete implementations live
// outside the core; pkg/store/postgres and pkg/store/memory each wire
// one appropriate to their deployment.
type ArtifactStore interface {
	Save(ctx context.Context, releaseID uuid.UUID, filename string, data []byte) (path string, downloadURL string, err error)
}

// Service implements the eight Service API operations.
type Service struct {
	Store     *repo.Store
	Artifacts ArtifactStore
	Validate  *validator.Validate
	Logger    logging.Logger
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) validate(in any) error {
	if err := s.Validate.Struct(in); err != nil {
		return errs.Wrap(errs.Validation, "SERVICE_INVALID_INPUT", "input failed validation", err)
	}
	return nil
}

func (s *Service) audit(ctx context.Context, releaseID uuid.UUID, accountID, action string, items ...domain.StateHistoryItem) {
	entry := &domain.StateHistory{
		ID:        uuid.New(),
		ReleaseID: releaseID,
		AccountID: accountID,
		Action:    action,
		Items:     items,
		CreatedAt: s.now(),
	}
	if err := s.Store.History.Append(ctx, entry); err != nil {
		s.Logger.Error("failed to append audit history", logging.NewField("releaseId", releaseID), logging.NewField("action", action), logging.NewField("cause", err.Error()))
	}
}

// StartInput is the input contract for start (spec.md §4.8).
type StartInput struct {
	ReleaseID uuid.UUID `validate:"required"`
}

// Start validates the release is not terminal and not already running,
// then marks Stage 1 in progress (spec.md §4.8).
func (s *Service) Start(ctx context.Context, in StartInput) Result[*domain.Release] {
	if err := s.validate(in); err != nil {
		return fail[*domain.Release](err)
	}

	release, err := s.Store.Releases.FindByID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.Release](err)
	}
	if release.Status.IsTerminal() {
		return fail[*domain.Release](errs.New(errs.Conflict, "SERVICE_RELEASE_TERMINAL", "release is terminal"))
	}

	cronJob, err := s.Store.CronJobs.FindByReleaseID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.Release](err)
	}
	if cronJob.CronStatus == domain.CronStatusRunning {
		return fail[*domain.Release](errs.New(errs.Conflict, "SERVICE_ALREADY_RUNNING", "release is already running"))
	}

	stage1 := domain.StageStatusInProgress
	cronStatus := domain.CronStatusRunning
	if err := s.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{Stage1Status: &stage1, CronStatus: &cronStatus}); err != nil {
		return fail[*domain.Release](err)
	}

	inProgress := domain.ReleaseStatusInProgress
	if err := s.Store.Releases.Update(ctx, release.ID, repo.ReleasePatch{Status: &inProgress}); err != nil {
		return fail[*domain.Release](err)
	}
	release.Status = domain.ReleaseStatusInProgress

	s.audit(ctx, release.ID, release.CreatedByAccountID, domain.ActionReleaseStarted)
	return ok(release)
}

// PauseInput is the input contract for pause and resume.
type PauseInput struct {
	ReleaseID uuid.UUID `validate:"required"`
	TenantID  string    `validate:"required"`
	AccountID string    `validate:"required"`
}

// Pause sets PauseType=USER_REQUESTED; idempotent when already paused
// that way (spec.md §4.8).
func (s *Service) Pause(ctx context.Context, in PauseInput) Result[*domain.CronJob] {
	if err := s.validate(in); err != nil {
		return fail[*domain.CronJob](err)
	}

	release, err := s.Store.Releases.FindByID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.CronJob](err)
	}
	if release.Status != domain.ReleaseStatusInProgress {
		return fail[*domain.CronJob](errs.New(errs.Conflict, "SERVICE_RELEASE_NOT_IN_PROGRESS", "release is not in progress"))
	}

	cronJob, err := s.Store.CronJobs.FindByReleaseID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.CronJob](err)
	}
	if cronJob.PauseType == domain.PauseTypeUserRequested {
		return ok(cronJob)
	}

	pauseType := domain.PauseTypeUserRequested
	if err := s.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{PauseType: &pauseType}); err != nil {
		return fail[*domain.CronJob](err)
	}
	cronJob.PauseType = pauseType

	s.audit(ctx, in.ReleaseID, in.AccountID, domain.ActionReleasePaused)
	return ok(cronJob)
}

// Resume clears a USER_REQUESTED pause; TASK_FAILURE and
// AWAITING_STAGE_TRIGGER pauses are refused (spec.md §4.8).
func (s *Service) Resume(ctx context.Context, in PauseInput) Result[*domain.CronJob] {
	if err := s.validate(in); err != nil {
		return fail[*domain.CronJob](err)
	}

	cronJob, err := s.Store.CronJobs.FindByReleaseID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.CronJob](err)
	}
	if cronJob.PauseType != domain.PauseTypeUserRequested {
		return fail[*domain.CronJob](errs.New(errs.Conflict, "SERVICE_CANNOT_RESUME", "cron job is not in a user-requested pause"))
	}

	noPause := domain.PauseTypeNone
	if err := s.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{PauseType: &noPause}); err != nil {
		return fail[*domain.CronJob](err)
	}
	cronJob.PauseType = noPause

	s.audit(ctx, in.ReleaseID, in.AccountID, domain.ActionReleaseResumed)
	return ok(cronJob)
}

// TriggerStageInput is the input contract for triggerStage2/triggerStage3.
type TriggerStageInput struct {
	ReleaseID uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
}

// TriggerStage2 requires Stage 1 COMPLETED and Stage 2 PENDING (spec.md §4.8).
func (s *Service) TriggerStage2(ctx context.Context, in TriggerStageInput) Result[*domain.CronJob] {
	return s.triggerStage(ctx, in, domain.TaskStageKickoff, domain.TaskStageRegression, domain.ActionStage2Triggered)
}

// TriggerStage3 requires Stage 2 COMPLETED and Stage 3 PENDING (spec.md §4.8).
func (s *Service) TriggerStage3(ctx context.Context, in TriggerStageInput) Result[*domain.CronJob] {
	return s.triggerStage(ctx, in, domain.TaskStageRegression, domain.TaskStagePostRegression, domain.ActionStage3Triggered)
}

func (s *Service) triggerStage(ctx context.Context, in TriggerStageInput, prior, target domain.TaskStage, action string) Result[*domain.CronJob] {
	if err := s.validate(in); err != nil {
		return fail[*domain.CronJob](err)
	}

	cronJob, err := s.Store.CronJobs.FindByReleaseID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.CronJob](err)
	}
	if cronJob.StageStatus(prior) != domain.StageStatusCompleted {
		return fail[*domain.CronJob](errs.New(errs.Validation, "SERVICE_PRIOR_STAGE_NOT_COMPLETE", "prior stage is not complete"))
	}
	if cronJob.StageStatus(target) != domain.StageStatusPending {
		return fail[*domain.CronJob](errs.New(errs.Validation, "SERVICE_TARGET_STAGE_NOT_PENDING", "target stage is not pending"))
	}

	patch := repo.CronJobPatch{}
	inProgress := domain.StageStatusInProgress
	cronStatus := domain.CronStatusRunning
	noPause := domain.PauseTypeNone
	autoTrue := true
	patch.CronStatus = &cronStatus
	patch.PauseType = &noPause
	switch target {
	case domain.TaskStageRegression:
		patch.Stage2Status = &inProgress
		patch.AutoTransitionToStage2 = &autoTrue
	case domain.TaskStagePostRegression:
		patch.Stage3Status = &inProgress
		patch.AutoTransitionToStage3 = &autoTrue
	}

	if err := s.Store.CronJobs.Update(ctx, cronJob.ID, patch); err != nil {
		return fail[*domain.CronJob](err)
	}
	cronJob.SetStageStatus(target, domain.StageStatusInProgress)
	cronJob.CronStatus = cronStatus
	cronJob.PauseType = noPause

	s.audit(ctx, in.ReleaseID, in.AccountID, action)
	return ok(cronJob)
}

// ArchiveInput is the input contract for archive.
type ArchiveInput struct {
	ReleaseID uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
}

// Archive is idempotent: archiving an already-archived release succeeds
// without further mutation (spec.md §4.8).
func (s *Service) Archive(ctx context.Context, in ArchiveInput) Result[*domain.Release] {
	if err := s.validate(in); err != nil {
		return fail[*domain.Release](err)
	}

	release, err := s.Store.Releases.FindByID(ctx, in.ReleaseID)
	if err != nil {
		return fail[*domain.Release](err)
	}
	if release.Status == domain.ReleaseStatusArchived {
		return ok(release)
	}

	archived := domain.ReleaseStatusArchived
	if err := s.Store.Releases.Update(ctx, release.ID, repo.ReleasePatch{Status: &archived}); err != nil {
		return fail[*domain.Release](err)
	}
	release.Status = archived

	if cronJob, cerr := s.Store.CronJobs.FindByReleaseID(ctx, in.ReleaseID); cerr == nil {
		completed := domain.CronStatusCompleted
		if uerr := s.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{CronStatus: &completed}); uerr != nil {
			s.Logger.Error("failed to mark cron job completed on archive", logging.NewField("releaseId", in.ReleaseID), logging.NewField("cause", uerr.Error()))
		}
	}

	s.audit(ctx, in.ReleaseID, in.AccountID, domain.ActionReleaseArchived)
	return ok(release)
}

// RetryTaskInput is the input contract for retryTask.
type RetryTaskInput struct {
	TaskID    uuid.UUID `validate:"required"`
	AccountID string    `validate:"required"`
}

// RetryTask resets a FAILED task to PENDING and clears a TASK_FAILURE
// pause, without re-invoking the provider inline (spec.md §4.8: "the
// next tick picks it up").
func (s *Service) RetryTask(ctx context.Context, in RetryTaskInput) Result[*domain.ReleaseTask] {
	if err := s.validate(in); err != nil {
		return fail[*domain.ReleaseTask](err)
	}

	task, err := s.Store.Tasks.FindByID(ctx, in.TaskID)
	if err != nil {
		return fail[*domain.ReleaseTask](err)
	}
	if task.TaskStatus != domain.TaskStatusFailed {
		return fail[*domain.ReleaseTask](errs.New(errs.Conflict, "SERVICE_TASK_NOT_FAILED", "task is not in a failed state"))
	}

	task.Reset(s.now())
	pending := task.TaskStatus
	if err := s.Store.Tasks.Update(ctx, task.ID, repo.ReleaseTaskPatch{TaskStatus: &pending}); err != nil {
		return fail[*domain.ReleaseTask](err)
	}

	if cronJob, cerr := s.Store.CronJobs.FindByReleaseID(ctx, task.ReleaseID); cerr == nil && cronJob.PauseType == domain.PauseTypeTaskFailure {
		noPause := domain.PauseTypeNone
		running := domain.CronStatusRunning
		if uerr := s.Store.CronJobs.Update(ctx, cronJob.ID, repo.CronJobPatch{PauseType: &noPause, CronStatus: &running}); uerr != nil {
			s.Logger.Error("failed to clear task-failure pause on retry", logging.NewField("releaseId", task.ReleaseID), logging.NewField("cause", uerr.Error()))
		}
	}

	s.audit(ctx, task.ReleaseID, in.AccountID, domain.ActionTaskRetried, domain.NewHistoryItem("taskId", task.ID.String()))
	return ok(task)
}

// UploadManualBuildInput is the input contract for uploadManualBuild.
type UploadManualBuildInput struct {
	ReleaseID uuid.UUID           `validate:"required"`
	Stage     domain.TaskStage    `validate:"required"`
	Platform  domain.PlatformName `validate:"required"`
	FileBytes []byte              `validate:"required,min=1"`
	Filename  string              `validate:"required"`
	AccountID string              `validate:"required"`
}

// UploadManualBuild validates the file extension, persists the artifact
// and a ReleaseUpload row, and returns per-platform readiness (spec.md
// §4.8).
func (s *Service) UploadManualBuild(ctx context.Context, in UploadManualBuildInput) Result[domain.UploadReadiness] {
	if err := s.validate(in); err != nil {
		return fail[domain.UploadReadiness](err)
	}
	if !domain.ValidUploadExtension(in.Filename) {
		return fail[domain.UploadReadiness](errs.New(errs.Validation, "SERVICE_INVALID_UPLOAD_EXTENSION", "file extension is not one of .ipa, .apk, .aab"))
	}

	path, downloadURL, err := s.Artifacts.Save(ctx, in.ReleaseID, in.Filename, in.FileBytes)
	if err != nil {
		return fail[domain.UploadReadiness](errs.Wrap(errs.Fatal, "SERVICE_ARTIFACT_SAVE_FAILED", "failed to persist build artifact", err))
	}

	upload := &domain.ReleaseUpload{
		ID:           uuid.New(),
		ReleaseID:    in.ReleaseID,
		Stage:        in.Stage,
		Platform:     in.Platform,
		ArtifactPath: path,
		DownloadURL:  downloadURL,
		UploadedAt:   s.now(),
	}
	if err := s.Store.Uploads.Create(ctx, upload); err != nil {
		return fail[domain.UploadReadiness](err)
	}

	mappings, err := s.Store.PlatformMappings.FindByReleaseID(ctx, in.ReleaseID)
	if err != nil {
		return fail[domain.UploadReadiness](err)
	}
	uploaded, err := s.Store.Uploads.FindByRelease(ctx, in.ReleaseID, in.Stage)
	if err != nil {
		return fail[domain.UploadReadiness](err)
	}
	readiness := domain.ComputeReadiness(domain.PlatformsOf(mappings), uploaded, in.Stage)

	s.audit(ctx, in.ReleaseID, in.AccountID, domain.ActionManualBuildUploaded, domain.NewHistoryItem("platform", string(in.Platform)))
	return ok(readiness)
}
