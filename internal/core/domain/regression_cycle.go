// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Feature: CORE_DOMAIN_REGRESSION_CYCLE
// Spec: spec/domain/regression_cycle.md

// RegressionCycle is a Stage-2 sub-iteration (spec.md §3).
type RegressionCycle struct {
	ID        uuid.UUID
	ReleaseID uuid.UUID
	CycleTag  string
	Status    RegressionCycleStatus
	IsLatest  bool
	// FirstCycle records whether this was the release's first regression
	// cycle, fixing the task-creation ordering table (with or without a
	// leading RESET_TEST_SUITE) at creation time rather than re-deriving it
	// later.
	FirstCycle bool
	// Config carries the per-slot CronConfig the cycle was created with,
	// supporting the flexible regression override decided for the Open
	// Question in spec.md §9: a queued slot's own config, not the
	// CronJob's base config, governs which optional tasks this cycle
	// creates.
	Config    CronConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the cycle still has work to do this tick
// (spec.md §4.5.2 step 2: "not DONE").
func (c *RegressionCycle) IsActive() bool {
	return c != nil && c.Status != RegressionCycleDone
}

// NextCycleTag computes the tag for a new cycle, `v{version}_rc_{n}`
// (spec.md §3, §8 scenario 1: "v1.0.0_rc_0").
func NextCycleTag(version string, tagCount int) string {
	return fmt.Sprintf("v%s_rc_%d", version, tagCount)
}
