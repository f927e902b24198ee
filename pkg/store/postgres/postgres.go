// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/repo"
)

// Feature: STORE_POSTGRES
// Spec: spec/store/postgres.md

// Store aggregates every pgx-backed repository.
type Store struct {
	Pool             *pgxpool.Pool
	CronJobs         *CronJobRepo
	Releases         *ReleaseRepo
	Tasks            *ReleaseTaskRepo
	RegressionCycles *RegressionCycleRepo
	PlatformMappings *PlatformMappingRepo
	Uploads          *ReleaseUploadsRepo
	Builds           *BuildRepo
	History          *StateHistoryRepo
}

// Open connects a pgxpool and returns a fully wired Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{
		Pool:             pool,
		CronJobs:         &CronJobRepo{pool: pool},
		Releases:         &ReleaseRepo{pool: pool},
		Tasks:            &ReleaseTaskRepo{pool: pool},
		RegressionCycles: &RegressionCycleRepo{pool: pool},
		PlatformMappings: &PlatformMappingRepo{pool: pool},
		Uploads:          &ReleaseUploadsRepo{pool: pool},
		Builds:           &BuildRepo{pool: pool},
		History:          &StateHistoryRepo{pool: pool},
	}, nil
}

func (s *Store) Close() { s.Pool.Close() }

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

func marshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// --- CronJobRepo ---

type CronJobRepo struct{ pool *pgxpool.Pool }

func (r *CronJobRepo) scan(row pgx.Row) (*domain.CronJob, error) {
	var c domain.CronJob
	var cronConfig, upcoming []byte
	var lockedAt *time.Time
	err := row.Scan(
		&c.ID, &c.ReleaseID,
		&c.Stage1Status, &c.Stage2Status, &c.Stage3Status,
		&c.CronStatus, &c.PauseType,
		&c.AutoTransitionToStage2, &c.AutoTransitionToStage3,
		&cronConfig, &upcoming,
		&c.LockedBy, &lockedAt, &c.LockTimeoutSec,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lockedAt != nil {
		c.LockedAt = *lockedAt
	}
	_ = json.Unmarshal(cronConfig, &c.CronConfig)
	_ = json.Unmarshal(upcoming, &c.UpcomingRegressions)
	return &c, nil
}

const cronJobColumns = `id, release_id, stage1_status, stage2_status, stage3_status, cron_status, pause_type,
	auto_transition_to_stage2, auto_transition_to_stage3, cron_config, upcoming_regressions,
	locked_by, locked_at, lock_timeout_sec, version, created_at, updated_at`

func (r *CronJobRepo) FindByReleaseID(ctx context.Context, releaseID uuid.UUID) (*domain.CronJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cronJobColumns+` FROM cron_jobs WHERE release_id = $1`, releaseID)
	c, err := r.scan(row)
	if err == pgx.ErrNoRows {
		return nil, notFound("cronJob", releaseID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("querying cron job: %w", err)
	}
	return c, nil
}

func (r *CronJobRepo) FindRunningCandidates(ctx context.Context, now time.Time) ([]*domain.CronJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cronJobColumns+` FROM cron_jobs
		WHERE cron_status = 'RUNNING'
		  AND (locked_by = '' OR locked_at + (lock_timeout_sec * interval '1 second') < $1)
		ORDER BY id`, now)
	if err != nil {
		return nil, fmt.Errorf("querying running candidates: %w", err)
	}
	defer rows.Close()

	var out []*domain.CronJob
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cron job: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CronJobRepo) Update(ctx context.Context, id uuid.UUID, patch repo.CronJobPatch) error {
	var upcoming, cronConfig []byte
	if patch.UpcomingRegressions != nil {
		upcoming = marshal(*patch.UpcomingRegressions)
	}
	if patch.CronConfig != nil {
		cronConfig = marshal(*patch.CronConfig)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE cron_jobs SET
		stage1_status = COALESCE($2, stage1_status),
		stage2_status = COALESCE($3, stage2_status),
		stage3_status = COALESCE($4, stage3_status),
		cron_status = COALESCE($5, cron_status),
		pause_type = COALESCE($6, pause_type),
		auto_transition_to_stage2 = COALESCE($7, auto_transition_to_stage2),
		auto_transition_to_stage3 = COALESCE($8, auto_transition_to_stage3),
		upcoming_regressions = COALESCE($9, upcoming_regressions),
		cron_config = COALESCE($10, cron_config),
		version = version + 1,
		updated_at = now()
		WHERE id = $1`,
		id, patch.Stage1Status, patch.Stage2Status, patch.Stage3Status,
		patch.CronStatus, patch.PauseType,
		patch.AutoTransitionToStage2, patch.AutoTransitionToStage3,
		upcoming, cronConfig,
	)
	if err != nil {
		return fmt.Errorf("updating cron job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("cronJob", id.String())
	}
	return nil
}

func jsonPatch(v any) []byte {
	if v == nil {
		return nil
	}
	return marshal(v)
}

func (r *CronJobRepo) AcquireLease(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE cron_jobs SET locked_by = $2, locked_at = now(), lock_timeout_sec = $3
		WHERE id = $1 AND (locked_by = '' OR locked_by = $2 OR locked_at + (lock_timeout_sec * interval '1 second') < now())`,
		id, owner, int(ttl.Seconds()))
	if err != nil {
		return false, fmt.Errorf("acquiring lease: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CronJobRepo) RenewLease(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE cron_jobs SET locked_at = now(), lock_timeout_sec = $3
		WHERE id = $1 AND locked_by = $2`, id, owner, int(ttl.Seconds()))
	if err != nil {
		return false, fmt.Errorf("renewing lease: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CronJobRepo) ReleaseLease(ctx context.Context, id uuid.UUID, owner string) error {
	_, err := r.pool.Exec(ctx, `UPDATE cron_jobs SET locked_by = '', locked_at = NULL
		WHERE id = $1 AND locked_by = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("releasing lease: %w", err)
	}
	return nil
}

// --- ReleaseRepo ---

type ReleaseRepo struct{ pool *pgxpool.Pool }

const releaseColumns = `id, tenant_id, type, status, branch, base_branch, release_config_id,
	target_release_date, kick_off_date, kick_off_reminder_date, has_manual_build_upload,
	created_by_account_id, release_pilot_account_id, last_updated_by_account_id, created_at, updated_at`

func (r *ReleaseRepo) scan(row pgx.Row) (*domain.Release, error) {
	var rel domain.Release
	err := row.Scan(
		&rel.ID, &rel.TenantID, &rel.Type, &rel.Status, &rel.Branch, &rel.BaseBranch, &rel.ReleaseConfigID,
		&rel.TargetReleaseDate, &rel.KickOffDate, &rel.KickOffReminderDate, &rel.HasManualBuildUpload,
		&rel.CreatedByAccountID, &rel.ReleasePilotAccountID, &rel.LastUpdatedByAccountID, &rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *ReleaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Release, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id = $1`, id)
	rel, err := r.scan(row)
	if err == pgx.ErrNoRows {
		return nil, notFound("release", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("querying release: %w", err)
	}
	return rel, nil
}

func (r *ReleaseRepo) Update(ctx context.Context, id uuid.UUID, patch repo.ReleasePatch) error {
	tag, err := r.pool.Exec(ctx, `UPDATE releases SET
		status = COALESCE($2, status),
		branch = COALESCE($3, branch),
		last_updated_by_account_id = COALESCE($4, last_updated_by_account_id),
		updated_at = now()
		WHERE id = $1`, id, patch.Status, patch.Branch, patch.LastUpdatedByAccountID)
	if err != nil {
		return fmt.Errorf("updating release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("release", id.String())
	}
	return nil
}

// --- ReleaseTaskRepo ---

type ReleaseTaskRepo struct{ pool *pgxpool.Pool }

const taskColumns = `id, release_id, regression_id, task_type, stage, task_status, external_id, external_data, created_at, updated_at`

func (r *ReleaseTaskRepo) scan(row pgx.Row) (*domain.ReleaseTask, error) {
	var t domain.ReleaseTask
	var externalData []byte
	err := row.Scan(&t.ID, &t.ReleaseID, &t.RegressionID, &t.TaskType, &t.Stage, &t.TaskStatus, &t.ExternalID, &externalData, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(externalData, &t.ExternalData)
	return &t, nil
}

func (r *ReleaseTaskRepo) queryAll(ctx context.Context, query string, args ...any) ([]*domain.ReleaseTask, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying release tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.ReleaseTask
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning release task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ReleaseTaskRepo) FindByReleaseAndStage(ctx context.Context, releaseID uuid.UUID, stage domain.TaskStage) ([]*domain.ReleaseTask, error) {
	return r.queryAll(ctx, `SELECT `+taskColumns+` FROM release_tasks WHERE release_id = $1 AND stage = $2 ORDER BY created_at`, releaseID, stage)
}

func (r *ReleaseTaskRepo) FindByTaskType(ctx context.Context, releaseID uuid.UUID, taskType domain.TaskType) (*domain.ReleaseTask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM release_tasks WHERE release_id = $1 AND task_type = $2`, releaseID, taskType)
	t, err := r.scan(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task by type: %w", err)
	}
	return t, nil
}

func (r *ReleaseTaskRepo) FindByRegressionCycle(ctx context.Context, regressionID uuid.UUID) ([]*domain.ReleaseTask, error) {
	return r.queryAll(ctx, `SELECT `+taskColumns+` FROM release_tasks WHERE regression_id = $1 ORDER BY created_at`, regressionID)
}

func (r *ReleaseTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ReleaseTask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM release_tasks WHERE id = $1`, id)
	t, err := r.scan(row)
	if err == pgx.ErrNoRows {
		return nil, notFound("task", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

func (r *ReleaseTaskRepo) BulkCreate(ctx context.Context, tasks []*domain.ReleaseTask) error {
	batch := &pgx.Batch{}
	for _, t := range tasks {
		batch.Queue(`INSERT INTO release_tasks (id, release_id, regression_id, task_type, stage, task_status, external_id, external_data, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			t.ID, t.ReleaseID, t.RegressionID, t.TaskType, t.Stage, t.TaskStatus, t.ExternalID, marshal(t.ExternalData), t.CreatedAt, t.UpdatedAt)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range tasks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("bulk creating release tasks: %w", err)
		}
	}
	return nil
}

func (r *ReleaseTaskRepo) Update(ctx context.Context, id uuid.UUID, patch repo.ReleaseTaskPatch) error {
	var externalIDSet bool
	var externalID *string
	if patch.ExternalID != nil {
		externalIDSet = true
		externalID = *patch.ExternalID
	}

	var externalData []byte
	if patch.ExternalData != nil {
		externalData = marshal(*patch.ExternalData)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE release_tasks SET
		task_status = COALESCE($2, task_status),
		external_id = CASE WHEN $3 THEN $4 ELSE external_id END,
		external_data = COALESCE($5, external_data),
		updated_at = now()
		WHERE id = $1`, id, patch.TaskStatus, externalIDSet, externalID, externalData)
	if err != nil {
		return fmt.Errorf("updating release task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("task", id.String())
	}
	return nil
}

// --- RegressionCycleRepo ---

type RegressionCycleRepo struct{ pool *pgxpool.Pool }

const regressionCycleColumns = `id, release_id, cycle_tag, status, is_latest, first_cycle, config, created_at, updated_at`

func (r *RegressionCycleRepo) scan(row pgx.Row) (*domain.RegressionCycle, error) {
	var c domain.RegressionCycle
	var config []byte
	err := row.Scan(&c.ID, &c.ReleaseID, &c.CycleTag, &c.Status, &c.IsLatest, &c.FirstCycle, &config, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(config, &c.Config)
	return &c, nil
}

func (r *RegressionCycleRepo) FindLatest(ctx context.Context, releaseID uuid.UUID) (*domain.RegressionCycle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+regressionCycleColumns+` FROM regression_cycles WHERE release_id = $1 AND is_latest`, releaseID)
	c, err := r.scan(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest regression cycle: %w", err)
	}
	return c, nil
}

func (r *RegressionCycleRepo) FindAll(ctx context.Context, releaseID uuid.UUID) ([]*domain.RegressionCycle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+regressionCycleColumns+` FROM regression_cycles WHERE release_id = $1 ORDER BY created_at`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("querying regression cycles: %w", err)
	}
	defer rows.Close()

	var out []*domain.RegressionCycle
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning regression cycle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *RegressionCycleRepo) Create(ctx context.Context, cycle *domain.RegressionCycle) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO regression_cycles (id, release_id, cycle_tag, status, is_latest, first_cycle, config, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		cycle.ID, cycle.ReleaseID, cycle.CycleTag, cycle.Status, cycle.IsLatest, cycle.FirstCycle, marshal(cycle.Config), cycle.CreatedAt, cycle.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating regression cycle: %w", err)
	}
	return nil
}

func (r *RegressionCycleRepo) Update(ctx context.Context, id uuid.UUID, patch repo.RegressionCyclePatch) error {
	tag, err := r.pool.Exec(ctx, `UPDATE regression_cycles SET
		status = COALESCE($2, status),
		is_latest = COALESCE($3, is_latest),
		updated_at = now()
		WHERE id = $1`, id, patch.Status, patch.IsLatest)
	if err != nil {
		return fmt.Errorf("updating regression cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("regressionCycle", id.String())
	}
	return nil
}

func (r *RegressionCycleRepo) GetCycleCount(ctx context.Context, releaseID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM regression_cycles WHERE release_id = $1`, releaseID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting regression cycles: %w", err)
	}
	return n, nil
}

func (r *RegressionCycleRepo) GetTagCount(ctx context.Context, releaseID uuid.UUID) (int, error) {
	return r.GetCycleCount(ctx, releaseID)
}

// --- PlatformMappingRepo ---

type PlatformMappingRepo struct{ pool *pgxpool.Pool }

func (r *PlatformMappingRepo) FindByReleaseID(ctx context.Context, releaseID uuid.UUID) ([]domain.PlatformTargetMapping, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, release_id, platform, target, version, project_management_run_id, test_management_run_id
		FROM platform_target_mappings WHERE release_id = $1 ORDER BY platform`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("querying platform mappings: %w", err)
	}
	defer rows.Close()

	var out []domain.PlatformTargetMapping
	for rows.Next() {
		var m domain.PlatformTargetMapping
		if err := rows.Scan(&m.ID, &m.ReleaseID, &m.Platform, &m.Target, &m.Version, &m.ProjectManagementRunID, &m.TestManagementRunID); err != nil {
			return nil, fmt.Errorf("scanning platform mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PlatformMappingRepo) Update(ctx context.Context, id uuid.UUID, runID string, field string) error {
	var column string
	switch field {
	case "projectManagementRunId":
		column = "project_management_run_id"
	case "testManagementRunId":
		column = "test_management_run_id"
	default:
		return fmt.Errorf("unknown platform mapping field %q", field)
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE platform_target_mappings SET %s = $2 WHERE id = $1`, column), id, runID)
	if err != nil {
		return fmt.Errorf("updating platform mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("platformMapping", id.String())
	}
	return nil
}

// --- ReleaseUploadsRepo ---

type ReleaseUploadsRepo struct{ pool *pgxpool.Pool }

func (r *ReleaseUploadsRepo) FindByRelease(ctx context.Context, releaseID uuid.UUID, stage domain.TaskStage) ([]domain.ReleaseUpload, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, release_id, stage, platform, artifact_path, download_url, uploaded_at
		FROM release_uploads WHERE release_id = $1 AND stage = $2 ORDER BY uploaded_at`, releaseID, stage)
	if err != nil {
		return nil, fmt.Errorf("querying release uploads: %w", err)
	}
	defer rows.Close()

	var out []domain.ReleaseUpload
	for rows.Next() {
		var u domain.ReleaseUpload
		if err := rows.Scan(&u.ID, &u.ReleaseID, &u.Stage, &u.Platform, &u.ArtifactPath, &u.DownloadURL, &u.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning release upload: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *ReleaseUploadsRepo) Create(ctx context.Context, upload *domain.ReleaseUpload) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO release_uploads (id, release_id, stage, platform, artifact_path, download_url, uploaded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		upload.ID, upload.ReleaseID, upload.Stage, upload.Platform, upload.ArtifactPath, upload.DownloadURL, upload.UploadedAt)
	if err != nil {
		return fmt.Errorf("creating release upload: %w", err)
	}
	return nil
}

// --- BuildRepo ---

type BuildRepo struct{ pool *pgxpool.Pool }

func (r *BuildRepo) Create(ctx context.Context, build *repo.Build) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO builds (id, release_id, regression_id, platform, build_number, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		build.ID, build.ReleaseID, build.RegressionID, build.Platform, build.BuildNumber, build.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating build: %w", err)
	}
	return nil
}

func (r *BuildRepo) FindByRelease(ctx context.Context, releaseID uuid.UUID) ([]repo.Build, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, release_id, regression_id, platform, build_number, created_at
		FROM builds WHERE release_id = $1 ORDER BY created_at`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("querying builds: %w", err)
	}
	defer rows.Close()

	var out []repo.Build
	for rows.Next() {
		var b repo.Build
		if err := rows.Scan(&b.ID, &b.ReleaseID, &b.RegressionID, &b.Platform, &b.BuildNumber, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning build: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// --- StateHistoryRepo ---

type StateHistoryRepo struct{ pool *pgxpool.Pool }

func (r *StateHistoryRepo) Append(ctx context.Context, entry *domain.StateHistory) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO state_history (id, release_id, account_id, action, items, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		entry.ID, entry.ReleaseID, entry.AccountID, entry.Action, marshal(entry.Items), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending state history: %w", err)
	}
	return nil
}

func (r *StateHistoryRepo) FindByRelease(ctx context.Context, releaseID uuid.UUID) ([]domain.StateHistory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, release_id, account_id, action, items, created_at
		FROM state_history WHERE release_id = $1 ORDER BY created_at`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	var out []domain.StateHistory
	for rows.Next() {
		var h domain.StateHistory
		var items []byte
		if err := rows.Scan(&h.ID, &h.ReleaseID, &h.AccountID, &h.Action, &items, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		_ = json.Unmarshal(items, &h.Items)
		out = append(out, h)
	}
	return out, rows.Err()
}
