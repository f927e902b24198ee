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

// Feature: CORE_DOMAIN_TASK
// Spec: spec/domain/task.md

// ReleaseTask is one unit of work described in spec.md §3.
type ReleaseTask struct {
	ID           uuid.UUID
	ReleaseID    uuid.UUID
	RegressionID *uuid.UUID
	TaskType     TaskType
	Stage        TaskStage
	TaskStatus   TaskStatus
	ExternalID   *string
	ExternalData map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy safe for callers to mutate.
func (t *ReleaseTask) Clone() *ReleaseTask {
	if t == nil {
		return nil
	}
	clone := *t
	if t.RegressionID != nil {
		id := *t.RegressionID
		clone.RegressionID = &id
	}
	if t.ExternalID != nil {
		v := *t.ExternalID
		clone.ExternalID = &v
	}
	if t.ExternalData != nil {
		clone.ExternalData = make(map[string]any, len(t.ExternalData))
		for k, v := range t.ExternalData {
			clone.ExternalData[k] = v
		}
	}
	return &clone
}

// MarkFailed records a provider failure per the Task Executor's result
// classification rule (spec.md §4.4): status -> FAILED, with the error
// and a timestamp recorded into ExternalData.
func (t *ReleaseTask) MarkFailed(err error, now time.Time) {
	t.TaskStatus = TaskStatusFailed
	if t.ExternalData == nil {
		t.ExternalData = map[string]any{}
	}
	t.ExternalData["error"] = err.Error()
	t.ExternalData["timestamp"] = now
	t.UpdatedAt = now
}

// MarkCompletedCategoryA records a Category A result: a single external
// identifier stored in both ExternalID and ExternalData["externalId"].
func (t *ReleaseTask) MarkCompletedCategoryA(externalID string, data map[string]any, now time.Time) {
	id := externalID
	t.ExternalID = &id
	if data == nil {
		data = map[string]any{}
	}
	data["externalId"] = externalID
	t.ExternalData = data
	t.TaskStatus = TaskStatusCompleted
	t.UpdatedAt = now
}

// MarkCompletedCategoryB records a Category B result: a structured
// object in ExternalData, with ExternalID left nil.
func (t *ReleaseTask) MarkCompletedCategoryB(data map[string]any, now time.Time) {
	t.ExternalID = nil
	t.ExternalData = data
	t.TaskStatus = TaskStatusCompleted
	t.UpdatedAt = now
}

// Reset implements the retryTask Service API operation (spec.md §4.8):
// a FAILED task's status is reset to PENDING. ExternalData from the
// failed attempt is intentionally left in place for audit purposes;
// the next successful execution overwrites it.
func (t *ReleaseTask) Reset(now time.Time) {
	t.TaskStatus = TaskStatusPending
	t.UpdatedAt = now
}

// TaskTypeOrder is one entry of a stage's declared task ordering table
// (spec.md §4.1).
type TaskTypeOrder struct {
	Type TaskType
	// Optional, when non-nil, reports whether this task type is enabled
	// by the release's CronConfig. A nil Optional means the task is
	// always required.
	Optional func(cfg CronConfig) bool
}

// IsRequired reports whether the task type is required given cfg.
func (o TaskTypeOrder) IsRequired(cfg CronConfig) bool {
	if o.Optional == nil {
		return true
	}
	return o.Optional(cfg)
}

// KickoffTaskOrder is the Stage-1 declared ordering (spec.md §4.1, §6.1).
var KickoffTaskOrder = []TaskTypeOrder{
	{Type: TaskTypePreKickOffReminder, Optional: func(c CronConfig) bool { return c.KickOffReminder }},
	{Type: TaskTypeForkBranch},
	{Type: TaskTypeCreateProjectManagementTix},
	{Type: TaskTypeCreateTestSuite},
	{Type: TaskTypeTriggerPreRegressionBuilds, Optional: func(c CronConfig) bool { return c.PreRegressionBuilds }},
}

// RegressionTaskOrderFirstCycle is the Stage-2 declared ordering used for
// the first cycle of a release. It has no RESET_TEST_SUITE step: the first
// cycle runs against the test suite that Kickoff's CREATE_TEST_SUITE
// created, and only later cycles reset it.
var RegressionTaskOrderFirstCycle = []TaskTypeOrder{
	{Type: TaskTypeCreateRCTag},
	{Type: TaskTypeCreateReleaseNotes},
	{Type: TaskTypeTriggerRegressionBuilds},
	{Type: TaskTypeTriggerAutomationRuns, Optional: func(c CronConfig) bool { return c.AutomationRuns }},
	{Type: TaskTypeAutomationRuns, Optional: func(c CronConfig) bool { return c.AutomationRuns }},
	{Type: TaskTypeSendRegressionBuildMessage},
}

// RegressionTaskOrderSubsequentCycle is the Stage-2 declared ordering for
// the second and later cycles of a release.
var RegressionTaskOrderSubsequentCycle = []TaskTypeOrder{
	{Type: TaskTypeResetTestSuite},
	{Type: TaskTypeCreateRCTag},
	{Type: TaskTypeCreateReleaseNotes},
	{Type: TaskTypeTriggerRegressionBuilds},
	{Type: TaskTypeTriggerAutomationRuns, Optional: func(c CronConfig) bool { return c.AutomationRuns }},
	{Type: TaskTypeAutomationRuns, Optional: func(c CronConfig) bool { return c.AutomationRuns }},
	{Type: TaskTypeSendRegressionBuildMessage},
}

// PreReleaseTaskOrder is the Stage-3 declared ordering. The TestFlight
// task is enabled by CronConfig.TestFlightBuilds; in addition, the caller
// drops it when the release has no iOS platform mapping (PreRelease.order)
// (spec.md §4.5.3).
var PreReleaseTaskOrder = []TaskTypeOrder{
	{Type: TaskTypePreReleaseCherryPicksReminder},
	{Type: TaskTypeCreateReleaseTag},
	{Type: TaskTypeCreateFinalReleaseNotes},
	{Type: TaskTypeTriggerTestFlightBuild, Optional: func(c CronConfig) bool { return c.TestFlightBuilds }},
	{Type: TaskTypeSendPostRegressionMessage},
	{Type: TaskTypeCheckProjectReleaseApproval},
}

// OrderFor returns the declared task ordering table for a stage. For
// Regression, firstCycle selects between the two variants named above.
func OrderFor(stage TaskStage, firstCycle bool) []TaskTypeOrder {
	switch stage {
	case TaskStageKickoff:
		return KickoffTaskOrder
	case TaskStageRegression:
		if firstCycle {
			return RegressionTaskOrderFirstCycle
		}
		return RegressionTaskOrderSubsequentCycle
	case TaskStagePostRegression:
		return PreReleaseTaskOrder
	default:
		return nil
	}
}
