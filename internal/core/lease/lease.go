// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package lease implements the per-CronJob advisory lease described in
// spec.md §4.3: mutual exclusion over a single row for the duration of
// one scheduler tick, recovered by TTL expiry rather than distributed
// consensus (spec.md §1: "no distributed consensus").
package lease

import (
	"context"
	"time"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/errs"
	"releaseorchestrator/internal/core/repo"
)

// Feature: CORE_LEASE_MANAGER
// Spec: spec/core/lease.md

// DefaultTTL is the default lease time-to-live (spec.md §4.3: "Default
// TTL 300 s").
const DefaultTTL = 300 * time.Second

// Manager wraps a CronJobRepo with a fixed owner identity and TTL.
type Manager struct {
	repo  repo.CronJobRepo
	owner string
	ttl   time.Duration
}

// New builds a lease Manager for a single process/instance identity.
func New(r repo.CronJobRepo, owner string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{repo: r, owner: owner, ttl: ttl}
}

// Owner returns this manager's instance identity.
func (m *Manager) Owner() string { return m.owner }

// Acquire attempts to take the lease on cronJobID. Acquire failure is not
// an error (spec.md §4.3: "the tick simply skips this release") — callers
// should check the returned bool.
func (m *Manager) Acquire(ctx context.Context, cronJobID uuid.UUID) (bool, error) {
	ok, err := m.repo.AcquireLease(ctx, cronJobID, m.owner, m.ttl)
	if err != nil {
		return false, errs.Wrap(errs.Fatal, "LEASE_ACQUIRE_FAILED", "acquiring lease", err)
	}
	return ok, nil
}

// Renew extends the lease. A renew failure means ownership was lost
// (lease expired and another owner acquired it); the caller MUST
// abandon further mutation for this tick (spec.md §4.3, §5).
func (m *Manager) Renew(ctx context.Context, cronJobID uuid.UUID) (bool, error) {
	ok, err := m.repo.RenewLease(ctx, cronJobID, m.owner, m.ttl)
	if err != nil {
		return false, errs.Wrap(errs.Fatal, "LEASE_RENEW_FAILED", "renewing lease", err)
	}
	return ok, nil
}

// Release clears the lease, but only if this manager still owns it
// (spec.md §4.3: "clears both columns only if lockedBy = instanceId").
func (m *Manager) Release(ctx context.Context, cronJobID uuid.UUID) error {
	if err := m.repo.ReleaseLease(ctx, cronJobID, m.owner); err != nil {
		return errs.Wrap(errs.Fatal, "LEASE_RELEASE_FAILED", "releasing lease", err)
	}
	return nil
}

// WithLease runs fn while holding the lease on cronJobID, and always
// releases it afterward regardless of fn's outcome. If the lease cannot
// be acquired, WithLease returns (false, nil) without invoking fn —
// LeaseContention is a silent skip, not an error (spec.md §7).
func (m *Manager) WithLease(ctx context.Context, cronJobID uuid.UUID, fn func(ctx context.Context) error) (ran bool, err error) {
	acquired, err := m.Acquire(ctx, cronJobID)
	if err != nil {
		return false, err
	}
	if !acquired {
		return false, nil
	}
	defer func() {
		if relErr := m.Release(ctx, cronJobID); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return true, fn(ctx)
}
