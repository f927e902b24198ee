// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package memory implements every repo.* interface in process memory,
// generalized from the teacher's internal/core/state.Manager pattern
// (mutex-guarded map, clone-on-read/write so callers never alias
// internal state) into the release-orchestrator's repository contracts.
// It backs unit and scenario tests; pkg/store/postgres is the
// production-grade implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/repo"
)

// Feature: STORE_MEMORY
// Spec: spec/store/memory.md

// Store aggregates every in-memory repository, ready to be unpacked
// into a repo.Store.
type Store struct {
	CronJobs         *CronJobRepo
	Releases         *ReleaseRepo
	Tasks            *ReleaseTaskRepo
	RegressionCycles *RegressionCycleRepo
	PlatformMappings *PlatformMappingRepo
	Uploads          *ReleaseUploadsRepo
	Builds           *BuildRepo
	History          *StateHistoryRepo
}

// New builds an empty in-memory Store.
func New() *Store {
	return &Store{
		CronJobs:         NewCronJobRepo(),
		Releases:         NewReleaseRepo(),
		Tasks:            NewReleaseTaskRepo(),
		RegressionCycles: NewRegressionCycleRepo(),
		PlatformMappings: NewPlatformMappingRepo(),
		Uploads:          NewReleaseUploadsRepo(),
		Builds:           NewBuildRepo(),
		History:          NewStateHistoryRepo(),
	}
}

// AsRepoStore adapts Store into the core's repo.Store aggregate.
func (s *Store) AsRepoStore() *repo.Store {
	return &repo.Store{
		CronJobs:         s.CronJobs,
		Releases:         s.Releases,
		Tasks:            s.Tasks,
		RegressionCycles: s.RegressionCycles,
		PlatformMappings: s.PlatformMappings,
		Uploads:          s.Uploads,
		Builds:           s.Builds,
		History:          s.History,
	}
}

func notFound(kind, id string) error {
	return errs.New(errs.NotFound, "STORE_NOT_FOUND", kind+" not found: "+id)
}

// --- CronJobRepo ---

type CronJobRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.CronJob
}

func NewCronJobRepo() *CronJobRepo { return &CronJobRepo{rows: map[uuid.UUID]*domain.CronJob{}} }

// Put inserts or replaces a row; test setup helper, not part of repo.CronJobRepo.
func (r *CronJobRepo) Put(c *domain.CronJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = c.Clone()
}

func (r *CronJobRepo) FindByReleaseID(ctx context.Context, releaseID uuid.UUID) (*domain.CronJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ReleaseID == releaseID {
			return c.Clone(), nil
		}
	}
	return nil, notFound("cronJob", releaseID.String())
}

func (r *CronJobRepo) FindRunningCandidates(ctx context.Context, now time.Time) ([]*domain.CronJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.CronJob
	for _, c := range r.rows {
		if c.CronStatus != domain.CronStatusRunning {
			continue
		}
		leaseFree := c.LockedBy == "" || c.LockedAt.Add(time.Duration(c.LockTimeoutSec)*time.Second).Before(now)
		if leaseFree {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *CronJobRepo) Update(ctx context.Context, id uuid.UUID, patch repo.CronJobPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return notFound("cronJob", id.String())
	}
	if patch.Stage1Status != nil {
		c.Stage1Status = *patch.Stage1Status
	}
	if patch.Stage2Status != nil {
		c.Stage2Status = *patch.Stage2Status
	}
	if patch.Stage3Status != nil {
		c.Stage3Status = *patch.Stage3Status
	}
	if patch.CronStatus != nil {
		c.CronStatus = *patch.CronStatus
	}
	if patch.PauseType != nil {
		c.PauseType = *patch.PauseType
	}
	if patch.AutoTransitionToStage2 != nil {
		c.AutoTransitionToStage2 = *patch.AutoTransitionToStage2
	}
	if patch.AutoTransitionToStage3 != nil {
		c.AutoTransitionToStage3 = *patch.AutoTransitionToStage3
	}
	if patch.UpcomingRegressions != nil {
		c.UpcomingRegressions = *patch.UpcomingRegressions
	}
	if patch.CronConfig != nil {
		c.CronConfig = *patch.CronConfig
	}
	c.UpdatedAt = time.Now().UTC()
	c.Version++
	return nil
}

func (r *CronJobRepo) AcquireLease(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return false, notFound("cronJob", id.String())
	}
	now := time.Now().UTC()
	expired := c.LockedAt.Add(time.Duration(c.LockTimeoutSec) * time.Second).Before(now)
	if c.LockedBy != "" && c.LockedBy != owner && !expired {
		return false, nil
	}
	c.LockedBy = owner
	c.LockedAt = now
	c.LockTimeoutSec = int(ttl.Seconds())
	return true, nil
}

func (r *CronJobRepo) RenewLease(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return false, notFound("cronJob", id.String())
	}
	if c.LockedBy != owner {
		return false, nil
	}
	c.LockedAt = time.Now().UTC()
	c.LockTimeoutSec = int(ttl.Seconds())
	return true, nil
}

func (r *CronJobRepo) ReleaseLease(ctx context.Context, id uuid.UUID, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return notFound("cronJob", id.String())
	}
	if c.LockedBy == owner {
		c.LockedBy = ""
		c.LockedAt = time.Time{}
	}
	return nil
}

// --- ReleaseRepo ---

type ReleaseRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Release
}

func NewReleaseRepo() *ReleaseRepo { return &ReleaseRepo{rows: map[uuid.UUID]*domain.Release{}} }

func (r *ReleaseRepo) Put(rel *domain.Release) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rel.ID] = rel.Clone()
}

func (r *ReleaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, ok := r.rows[id]
	if !ok {
		return nil, notFound("release", id.String())
	}
	return rel.Clone(), nil
}

func (r *ReleaseRepo) Update(ctx context.Context, id uuid.UUID, patch repo.ReleasePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, ok := r.rows[id]
	if !ok {
		return notFound("release", id.String())
	}
	if patch.Status != nil {
		rel.Status = *patch.Status
	}
	if patch.Branch != nil {
		rel.Branch = *patch.Branch
	}
	if patch.LastUpdatedByAccountID != nil {
		rel.LastUpdatedByAccountID = *patch.LastUpdatedByAccountID
	}
	rel.UpdatedAt = time.Now().UTC()
	return nil
}

// --- ReleaseTaskRepo ---

type ReleaseTaskRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.ReleaseTask
}

func NewReleaseTaskRepo() *ReleaseTaskRepo {
	return &ReleaseTaskRepo{rows: map[uuid.UUID]*domain.ReleaseTask{}}
}

func (r *ReleaseTaskRepo) FindByReleaseAndStage(ctx context.Context, releaseID uuid.UUID, stage domain.TaskStage) ([]*domain.ReleaseTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ReleaseTask
	for _, t := range r.rows {
		if t.ReleaseID == releaseID && t.Stage == stage {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ReleaseTaskRepo) FindByTaskType(ctx context.Context, releaseID uuid.UUID, taskType domain.TaskType) (*domain.ReleaseTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		if t.ReleaseID == releaseID && t.TaskType == taskType {
			return t.Clone(), nil
		}
	}
	return nil, nil
}

func (r *ReleaseTaskRepo) FindByRegressionCycle(ctx context.Context, regressionID uuid.UUID) ([]*domain.ReleaseTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ReleaseTask
	for _, t := range r.rows {
		if t.RegressionID != nil && *t.RegressionID == regressionID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ReleaseTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ReleaseTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, notFound("task", id.String())
	}
	return t.Clone(), nil
}

func (r *ReleaseTaskRepo) BulkCreate(ctx context.Context, tasks []*domain.ReleaseTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tasks {
		r.rows[t.ID] = t.Clone()
	}
	return nil
}

func (r *ReleaseTaskRepo) Update(ctx context.Context, id uuid.UUID, patch repo.ReleaseTaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return notFound("task", id.String())
	}
	if patch.TaskStatus != nil {
		t.TaskStatus = *patch.TaskStatus
	}
	if patch.ExternalID != nil {
		t.ExternalID = *patch.ExternalID
	}
	if patch.ExternalData != nil {
		t.ExternalData = *patch.ExternalData
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// --- RegressionCycleRepo ---

type RegressionCycleRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.RegressionCycle
}

func NewRegressionCycleRepo() *RegressionCycleRepo {
	return &RegressionCycleRepo{rows: map[uuid.UUID]*domain.RegressionCycle{}}
}

func (r *RegressionCycleRepo) FindLatest(ctx context.Context, releaseID uuid.UUID) (*domain.RegressionCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ReleaseID == releaseID && c.IsLatest {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *RegressionCycleRepo) FindAll(ctx context.Context, releaseID uuid.UUID) ([]*domain.RegressionCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RegressionCycle
	for _, c := range r.rows {
		if c.ReleaseID == releaseID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *RegressionCycleRepo) Create(ctx context.Context, cycle *domain.RegressionCycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *cycle
	r.rows[cycle.ID] = &clone
	return nil
}

func (r *RegressionCycleRepo) Update(ctx context.Context, id uuid.UUID, patch repo.RegressionCyclePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return notFound("regressionCycle", id.String())
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.IsLatest != nil {
		c.IsLatest = *patch.IsLatest
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *RegressionCycleRepo) GetCycleCount(ctx context.Context, releaseID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.rows {
		if c.ReleaseID == releaseID {
			n++
		}
	}
	return n, nil
}

func (r *RegressionCycleRepo) GetTagCount(ctx context.Context, releaseID uuid.UUID) (int, error) {
	return r.GetCycleCount(ctx, releaseID)
}

// --- PlatformMappingRepo ---

type PlatformMappingRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.PlatformTargetMapping
}

func NewPlatformMappingRepo() *PlatformMappingRepo {
	return &PlatformMappingRepo{rows: map[uuid.UUID]*domain.PlatformTargetMapping{}}
}

func (r *PlatformMappingRepo) Put(m domain.PlatformTargetMapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[m.ID] = &m
}

func (r *PlatformMappingRepo) FindByReleaseID(ctx context.Context, releaseID uuid.UUID) ([]domain.PlatformTargetMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PlatformTargetMapping
	for _, m := range r.rows {
		if m.ReleaseID == releaseID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func (r *PlatformMappingRepo) Update(ctx context.Context, id uuid.UUID, runID string, field string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return notFound("platformMapping", id.String())
	}
	switch field {
	case "projectManagementRunId":
		m.ProjectManagementRunID = runID
	case "testManagementRunId":
		m.TestManagementRunID = runID
	}
	return nil
}

// --- ReleaseUploadsRepo ---

type ReleaseUploadsRepo struct {
	mu   sync.Mutex
	rows []domain.ReleaseUpload
}

func NewReleaseUploadsRepo() *ReleaseUploadsRepo { return &ReleaseUploadsRepo{} }

func (r *ReleaseUploadsRepo) FindByRelease(ctx context.Context, releaseID uuid.UUID, stage domain.TaskStage) ([]domain.ReleaseUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ReleaseUpload
	for _, u := range r.rows {
		if u.ReleaseID == releaseID && u.Stage == stage {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *ReleaseUploadsRepo) Create(ctx context.Context, upload *domain.ReleaseUpload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *upload)
	return nil
}

// --- BuildRepo ---

type BuildRepo struct {
	mu   sync.Mutex
	rows []repo.Build
}

func NewBuildRepo() *BuildRepo { return &BuildRepo{} }

func (r *BuildRepo) Create(ctx context.Context, build *repo.Build) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *build)
	return nil
}

func (r *BuildRepo) FindByRelease(ctx context.Context, releaseID uuid.UUID) ([]repo.Build, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repo.Build
	for _, b := range r.rows {
		if b.ReleaseID == releaseID {
			out = append(out, b)
		}
	}
	return out, nil
}

// --- StateHistoryRepo ---

type StateHistoryRepo struct {
	mu   sync.Mutex
	rows []domain.StateHistory
}

func NewStateHistoryRepo() *StateHistoryRepo { return &StateHistoryRepo{} }

func (r *StateHistoryRepo) Append(ctx context.Context, entry *domain.StateHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *entry)
	return nil
}

func (r *StateHistoryRepo) FindByRelease(ctx context.Context, releaseID uuid.UUID) ([]domain.StateHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StateHistory
	for _, h := range r.rows {
		if h.ReleaseID == releaseID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
