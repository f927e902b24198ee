// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package repo defines the persistence operations the core consumes
// (spec.md §4.2). These are abstract contracts, not a SQL spec;
// concrete implementations live in pkg/store/memory and
// pkg/store/postgres.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
)

// Feature: CORE_REPOSITORY_CONTRACTS
// Spec: spec/core/repositories.md

// CronJobPatch carries a sparse set of field updates for CronJobRepo.Update.
// Nil fields are left untouched.
type CronJobPatch struct {
	Stage1Status           *domain.StageStatus
	Stage2Status           *domain.StageStatus
	Stage3Status           *domain.StageStatus
	CronStatus             *domain.CronStatus
	PauseType              *domain.PauseType
	AutoTransitionToStage2 *bool
	AutoTransitionToStage3 *bool
	UpcomingRegressions    *[]domain.RegressionSlot
	CronConfig             *domain.CronConfig
}

// CronJobRepo is the persistence contract for CronJob rows (spec.md §4.2).
type CronJobRepo interface {
	FindByReleaseID(ctx context.Context, releaseID uuid.UUID) (*domain.CronJob, error)
	// FindRunningCandidates returns CronJobs whose cronStatus = RUNNING,
	// whose release is not terminal, and whose lease is free or expired
	// as of now (spec.md §4.7).
	FindRunningCandidates(ctx context.Context, now time.Time) ([]*domain.CronJob, error)
	Update(ctx context.Context, id uuid.UUID, patch CronJobPatch) error

	// AcquireLease sets lockedBy/lockedAt only if the current lockedBy is
	// empty or the lease has expired (spec.md §4.3).
	AcquireLease(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error)
	RenewLease(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, id uuid.UUID, owner string) error
}

// ReleasePatch carries a sparse set of field updates for ReleaseRepo.Update.
type ReleasePatch struct {
	Status                 *domain.ReleaseStatus
	Branch                 *string
	LastUpdatedByAccountID *string
}

// ReleaseRepo is the persistence contract for Release rows.
type ReleaseRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Release, error)
	Update(ctx context.Context, id uuid.UUID, patch ReleasePatch) error
}

// ReleaseTaskPatch carries a sparse set of field updates for
// ReleaseTaskRepo.Update.
type ReleaseTaskPatch struct {
	TaskStatus   *domain.TaskStatus
	ExternalID   **string
	ExternalData *map[string]any
}

// ReleaseTaskRepo is the persistence contract for ReleaseTask rows.
type ReleaseTaskRepo interface {
	FindByReleaseAndStage(ctx context.Context, releaseID uuid.UUID, stage domain.TaskStage) ([]*domain.ReleaseTask, error)
	FindByTaskType(ctx context.Context, releaseID uuid.UUID, taskType domain.TaskType) (*domain.ReleaseTask, error)
	FindByRegressionCycle(ctx context.Context, regressionID uuid.UUID) ([]*domain.ReleaseTask, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ReleaseTask, error)
	BulkCreate(ctx context.Context, tasks []*domain.ReleaseTask) error
	Update(ctx context.Context, id uuid.UUID, patch ReleaseTaskPatch) error
}

// RegressionCyclePatch carries a sparse set of field updates for
// RegressionCycleRepo.Update.
type RegressionCyclePatch struct {
	Status   *domain.RegressionCycleStatus
	IsLatest *bool
}

// RegressionCycleRepo is the persistence contract for RegressionCycle rows.
type RegressionCycleRepo interface {
	FindLatest(ctx context.Context, releaseID uuid.UUID) (*domain.RegressionCycle, error)
	FindAll(ctx context.Context, releaseID uuid.UUID) ([]*domain.RegressionCycle, error)
	Create(ctx context.Context, cycle *domain.RegressionCycle) error
	Update(ctx context.Context, id uuid.UUID, patch RegressionCyclePatch) error
	GetCycleCount(ctx context.Context, releaseID uuid.UUID) (int, error)
	GetTagCount(ctx context.Context, releaseID uuid.UUID) (int, error)
}

// PlatformMappingRepo is the persistence contract for
// PlatformTargetMapping rows.
type PlatformMappingRepo interface {
	FindByReleaseID(ctx context.Context, releaseID uuid.UUID) ([]domain.PlatformTargetMapping, error)
	Update(ctx context.Context, id uuid.UUID, runID string, field string) error
}

// ReleaseUploadsRepo is the persistence contract for ReleaseUpload rows.
type ReleaseUploadsRepo interface {
	FindByRelease(ctx context.Context, releaseID uuid.UUID, stage domain.TaskStage) ([]domain.ReleaseUpload, error)
	Create(ctx context.Context, upload *domain.ReleaseUpload) error
}

// Build is a row linking a triggered CI/CD build back to a release
// (spec.md §3, §6.2).
type Build struct {
	ID           uuid.UUID
	ReleaseID    uuid.UUID
	RegressionID *uuid.UUID
	Platform     domain.PlatformName
	BuildNumber  string
	CreatedAt    time.Time
}

// BuildRepo is the persistence contract for Build rows.
type BuildRepo interface {
	Create(ctx context.Context, build *Build) error
	FindByRelease(ctx context.Context, releaseID uuid.UUID) ([]Build, error)
}

// StateHistoryRepo is the persistence contract for the audit trail.
type StateHistoryRepo interface {
	Append(ctx context.Context, entry *domain.StateHistory) error
	FindByRelease(ctx context.Context, releaseID uuid.UUID) ([]domain.StateHistory, error)
}

// Store aggregates every repository capability the core consumes,
// generalized from the teacher's re-architecture note "pass a Store
// value carrying all repository capabilities; no ambient lookup"
// (spec.md §9).
type Store struct {
	CronJobs          CronJobRepo
	Releases          ReleaseRepo
	Tasks             ReleaseTaskRepo
	RegressionCycles  RegressionCycleRepo
	PlatformMappings  PlatformMappingRepo
	Uploads           ReleaseUploadsRepo
	Builds            BuildRepo
	History           StateHistoryRepo
}
