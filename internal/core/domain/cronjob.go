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

// Feature: CORE_DOMAIN_CRONJOB
// Spec: spec/domain/cronjob.md

// CronConfig is the map of optional-task flags named in spec.md §3
// ("cronConfig (map of optional-task flags)").
type CronConfig struct {
	KickOffReminder      bool   `json:"kickOffReminder"`
	PreRegressionBuilds  bool   `json:"preRegressionBuilds"`
	AutomationBuilds     bool   `json:"automationBuilds"`
	AutomationRuns       bool   `json:"automationRuns"`
	TestFlightBuilds     bool   `json:"testFlightBuilds"`
	// ApprovalCompletedStatus is the PM ticket status that
	// CHECK_PROJECT_RELEASE_APPROVAL compares the polled ticket status
	// against (spec.md §4.4). Empty means no status has been configured,
	// so the task can only ever record "unknown".
	ApprovalCompletedStatus string `json:"approvalCompletedStatus"`
}

// RegressionSlot is one entry of the ordered `upcomingRegressions` list
// (spec.md §3, §6.2: "an ordered JSON array of {date, config}").
type RegressionSlot struct {
	DueAt  time.Time  `json:"dueAt"`
	Config CronConfig `json:"config"`
}

// CronJob is the per-release orchestration record, one-to-one with a
// Release (spec.md §3).
type CronJob struct {
	ID        uuid.UUID
	ReleaseID uuid.UUID

	Stage1Status StageStatus
	Stage2Status StageStatus
	Stage3Status StageStatus

	CronStatus CronStatus
	PauseType  PauseType

	AutoTransitionToStage2 bool
	AutoTransitionToStage3 bool

	CronConfig          CronConfig
	UpcomingRegressions []RegressionSlot

	LockedBy      string
	LockedAt      time.Time
	LockTimeoutSec int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Version supports optimistic-concurrency repository implementations
	// (spec.md §4.2: "per-row optimistic version checks").
	Version int64
}

// StageStatus returns the status of the named stage.
func (c *CronJob) StageStatus(stage TaskStage) StageStatus {
	switch stage {
	case TaskStageKickoff:
		return c.Stage1Status
	case TaskStageRegression:
		return c.Stage2Status
	case TaskStagePostRegression:
		return c.Stage3Status
	default:
		return ""
	}
}

// SetStageStatus sets the status of the named stage.
func (c *CronJob) SetStageStatus(stage TaskStage, status StageStatus) {
	switch stage {
	case TaskStageKickoff:
		c.Stage1Status = status
	case TaskStageRegression:
		c.Stage2Status = status
	case TaskStagePostRegression:
		c.Stage3Status = status
	}
}

// InProgressStageCount returns how many of the three stages are
// IN_PROGRESS. The corruption check in spec.md §4.6 treats a value > 1
// as fatal.
func (c *CronJob) InProgressStageCount() int {
	n := 0
	for _, s := range []StageStatus{c.Stage1Status, c.Stage2Status, c.Stage3Status} {
		if s == StageStatusInProgress {
			n++
		}
	}
	return n
}

// PopDueSlot removes and returns the earliest upcoming regression slot
// whose DueAt is <= now, or ok=false if none is due. This implements the
// "one cycle per tick, consume earliest due slot" decision recorded for
// the Open Question in spec.md §9.
func (c *CronJob) PopDueSlot(now time.Time) (slot RegressionSlot, ok bool) {
	if len(c.UpcomingRegressions) == 0 {
		return RegressionSlot{}, false
	}
	earliest := 0
	for i, s := range c.UpcomingRegressions {
		if s.DueAt.Before(c.UpcomingRegressions[earliest].DueAt) {
			earliest = i
		}
		_ = s
	}
	if c.UpcomingRegressions[earliest].DueAt.After(now) {
		return RegressionSlot{}, false
	}
	slot = c.UpcomingRegressions[earliest]
	c.UpcomingRegressions = append(c.UpcomingRegressions[:earliest], c.UpcomingRegressions[earliest+1:]...)
	return slot, true
}

// HasPendingSlot reports whether any upcoming regression slot remains
// queued, regardless of due time. Used by the Regression state's
// priority rule in spec.md §4.5.2: a pending slot keeps the stage in
// Regression even after `autoTransitionToStage3` would otherwise fire.
func (c *CronJob) HasPendingSlot() bool {
	return len(c.UpcomingRegressions) > 0
}

// Clone returns a deep copy safe for callers to mutate.
func (c *CronJob) Clone() *CronJob {
	if c == nil {
		return nil
	}
	clone := *c
	clone.UpcomingRegressions = make([]RegressionSlot, len(c.UpcomingRegressions))
	copy(clone.UpcomingRegressions, c.UpcomingRegressions)
	return &clone
}
