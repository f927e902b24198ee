// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseTask_Clone_DeepCopiesPointersAndMaps(t *testing.T) {
	regID := uuid.New()
	extID := "ext-1"
	task := &ReleaseTask{
		RegressionID: &regID,
		ExternalID:   &extID,
		ExternalData: map[string]any{"k": "v"},
	}

	clone := task.Clone()
	*clone.RegressionID = uuid.New()
	*clone.ExternalID = "changed"
	clone.ExternalData["k"] = "changed"

	assert.NotEqual(t, *task.RegressionID, *clone.RegressionID)
	assert.Equal(t, "ext-1", *task.ExternalID)
	assert.Equal(t, "v", task.ExternalData["k"])
}

func TestReleaseTask_Clone_Nil(t *testing.T) {
	var task *ReleaseTask
	assert.Nil(t, task.Clone())
}

func TestReleaseTask_MarkFailed(t *testing.T) {
	task := &ReleaseTask{}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task.MarkFailed(errors.New("provider timeout"), now)

	assert.Equal(t, TaskStatusFailed, task.TaskStatus)
	assert.Equal(t, "provider timeout", task.ExternalData["error"])
	assert.Equal(t, now, task.ExternalData["timestamp"])
	assert.Equal(t, now, task.UpdatedAt)
}

func TestReleaseTask_MarkCompletedCategoryA(t *testing.T) {
	task := &ReleaseTask{}
	now := time.Now()
	task.MarkCompletedCategoryA("TICKET-123", map[string]any{"extra": true}, now)

	require.NotNil(t, task.ExternalID)
	assert.Equal(t, "TICKET-123", *task.ExternalID)
	assert.Equal(t, "TICKET-123", task.ExternalData["externalId"])
	assert.Equal(t, true, task.ExternalData["extra"])
	assert.Equal(t, TaskStatusCompleted, task.TaskStatus)
}

func TestReleaseTask_MarkCompletedCategoryA_NilData(t *testing.T) {
	task := &ReleaseTask{}
	task.MarkCompletedCategoryA("TICKET-1", nil, time.Now())
	assert.Equal(t, "TICKET-1", task.ExternalData["externalId"])
}

func TestReleaseTask_MarkCompletedCategoryB(t *testing.T) {
	task := &ReleaseTask{ExternalID: func() *string { s := "stale"; return &s }()}
	data := map[string]any{"divergent": false}
	task.MarkCompletedCategoryB(data, time.Now())

	assert.Nil(t, task.ExternalID)
	assert.Equal(t, data, task.ExternalData)
	assert.Equal(t, TaskStatusCompleted, task.TaskStatus)
}

func TestReleaseTask_Reset(t *testing.T) {
	task := &ReleaseTask{TaskStatus: TaskStatusFailed, ExternalData: map[string]any{"error": "boom"}}
	now := time.Now()
	task.Reset(now)

	assert.Equal(t, TaskStatusPending, task.TaskStatus)
	assert.Equal(t, now, task.UpdatedAt)
	assert.Equal(t, "boom", task.ExternalData["error"], "prior ExternalData must survive a reset for audit purposes")
}

func TestTaskTypeOrder_IsRequired(t *testing.T) {
	alwaysRequired := TaskTypeOrder{Type: TaskTypeForkBranch}
	assert.True(t, alwaysRequired.IsRequired(CronConfig{}))

	optional := TaskTypeOrder{Type: TaskTypePreKickOffReminder, Optional: func(c CronConfig) bool { return c.KickOffReminder }}
	assert.False(t, optional.IsRequired(CronConfig{}))
	assert.True(t, optional.IsRequired(CronConfig{KickOffReminder: true}))
}

func TestOrderFor_KickoffAndPreRelease(t *testing.T) {
	assert.Equal(t, KickoffTaskOrder, OrderFor(TaskStageKickoff, true))
	assert.Equal(t, PreReleaseTaskOrder, OrderFor(TaskStagePostRegression, false))
	assert.Nil(t, OrderFor(TaskStage("BOGUS"), true))
}

func TestOrderFor_RegressionSelectsByFirstCycle(t *testing.T) {
	assert.Equal(t, RegressionTaskOrderFirstCycle, OrderFor(TaskStageRegression, true))
	assert.Equal(t, RegressionTaskOrderSubsequentCycle, OrderFor(TaskStageRegression, false))
	assert.NotEqual(t, OrderFor(TaskStageRegression, true), OrderFor(TaskStageRegression, false))
}
