// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Feature: CORE_DOMAIN_HISTORY
// Spec: spec/domain/history.md

// StateHistoryItem is one key/value pair named on a StateHistory row
// (spec.md §3).
type StateHistoryItem struct {
	Key   string
	Value string
}

// StateHistory is one append-only audit-trail row keyed by release
// (spec.md §3). Rows are never mutated after write.
type StateHistory struct {
	ID            uuid.UUID
	ReleaseID     uuid.UUID
	AccountID     string
	Action        string
	Items         []StateHistoryItem
	CreatedAt     time.Time
}

// Common audit action names used across the Service API and the stage
// states. Kept as a closed-ish set for consistency; new callers may add
// their own action strings.
const (
	ActionReleaseStarted       = "RELEASE_STARTED"
	ActionReleasePaused        = "RELEASE_PAUSED"
	ActionReleaseResumed       = "RELEASE_RESUMED"
	ActionReleaseArchived      = "RELEASE_ARCHIVED"
	ActionStage2Triggered      = "STAGE2_TRIGGERED"
	ActionStage3Triggered      = "STAGE3_TRIGGERED"
	ActionTaskRetried          = "TASK_RETRIED"
	ActionManualBuildUploaded  = "MANUAL_BUILD_UPLOADED"
	ActionStageTransitioned    = "STAGE_TRANSITIONED"
	ActionTaskFailed           = "TASK_FAILED"
	ActionRegressionCycleOpen  = "REGRESSION_CYCLE_OPENED"
)

// NewHistoryItem is a small constructor to keep call sites terse.
func NewHistoryItem(key, value string) StateHistoryItem {
	return StateHistoryItem{Key: key, Value: value}
}
