// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package lease

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/pkg/store/memory"
)

func TestNew_DefaultsTTLWhenNonPositive(t *testing.T) {
	m := New(memory.NewCronJobRepo(), "owner-a", 0)
	assert.Equal(t, DefaultTTL, m.ttl)
}

func TestManager_AcquireRenewRelease(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCronJobRepo()
	job := &domain.CronJob{ID: uuid.New(), CronStatus: domain.CronStatusRunning}
	repo.Put(job)

	m := New(repo, "owner-a", 30*time.Second)

	ok, err := m.Acquire(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "owner-a", m.Owner())

	ok, err = m.Renew(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Release(ctx, job.ID))

	other := New(repo, "owner-b", 30*time.Second)
	ok, err = other.Acquire(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ok, "lease must be acquirable once released")
}

func TestManager_Acquire_ContentionDoesNotError(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCronJobRepo()
	job := &domain.CronJob{ID: uuid.New(), CronStatus: domain.CronStatusRunning}
	repo.Put(job)

	a := New(repo, "owner-a", 30*time.Second)
	b := New(repo, "owner-b", 30*time.Second)

	ok, err := a.Acquire(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Acquire(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, ok, "lease contention is a silent false, not an error")
}

func TestManager_WithLease_RunsFnAndAlwaysReleases(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCronJobRepo()
	job := &domain.CronJob{ID: uuid.New(), CronStatus: domain.CronStatusRunning}
	repo.Put(job)

	m := New(repo, "owner-a", 30*time.Second)

	var ran bool
	executed, err := m.WithLease(ctx, job.ID, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, executed)
	assert.True(t, ran)

	other := New(repo, "owner-b", 30*time.Second)
	ok, err := other.Acquire(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ok, "WithLease must release the lease after fn returns")
}

func TestManager_WithLease_SkipsFnWhenContended(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCronJobRepo()
	job := &domain.CronJob{ID: uuid.New(), CronStatus: domain.CronStatusRunning}
	repo.Put(job)

	a := New(repo, "owner-a", 30*time.Second)
	ok, err := a.Acquire(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, ok)

	b := New(repo, "owner-b", 30*time.Second)
	var ran bool
	executed, err := b.WithLease(ctx, job.ID, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, executed)
	assert.False(t, ran, "fn must not run when the lease is contended")
}

func TestManager_WithLease_PropagatesFnError(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCronJobRepo()
	job := &domain.CronJob{ID: uuid.New(), CronStatus: domain.CronStatusRunning}
	repo.Put(job)

	m := New(repo, "owner-a", 30*time.Second)
	wantErr := errors.New("task failed")
	_, err := m.WithLease(ctx, job.ID, func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	other := New(repo, "owner-b", 30*time.Second)
	ok, acquireErr := other.Acquire(ctx, job.ID)
	require.NoError(t, acquireErr)
	assert.True(t, ok, "the lease must still be released even when fn errors")
}
