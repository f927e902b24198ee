// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCronJob_StageStatusRoundTrip(t *testing.T) {
	c := &CronJob{}
	c.SetStageStatus(TaskStageKickoff, StageStatusInProgress)
	c.SetStageStatus(TaskStageRegression, StageStatusCompleted)

	assert.Equal(t, StageStatusInProgress, c.StageStatus(TaskStageKickoff))
	assert.Equal(t, StageStatusCompleted, c.StageStatus(TaskStageRegression))
	assert.Equal(t, StageStatus(""), c.StageStatus(TaskStagePostRegression))
	assert.Equal(t, StageStatus(""), c.StageStatus(TaskStage("BOGUS")))
}

func TestCronJob_InProgressStageCount(t *testing.T) {
	c := &CronJob{
		Stage1Status: StageStatusInProgress,
		Stage2Status: StageStatusInProgress,
		Stage3Status: StageStatusPending,
	}
	assert.Equal(t, 2, c.InProgressStageCount())

	c.Stage2Status = StageStatusCompleted
	assert.Equal(t, 1, c.InProgressStageCount())
}

func TestCronJob_PopDueSlot_ReturnsEarliestDueSlot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &CronJob{
		UpcomingRegressions: []RegressionSlot{
			{DueAt: now.Add(2 * time.Hour)},
			{DueAt: now.Add(-1 * time.Hour)},
			{DueAt: now.Add(1 * time.Hour)},
		},
	}

	slot, ok := c.PopDueSlot(now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(-1*time.Hour), slot.DueAt)
	assert.Len(t, c.UpcomingRegressions, 2, "the popped slot must be removed")
}

func TestCronJob_PopDueSlot_NoneDueReturnsFalse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &CronJob{
		UpcomingRegressions: []RegressionSlot{
			{DueAt: now.Add(1 * time.Hour)},
		},
	}

	_, ok := c.PopDueSlot(now)
	assert.False(t, ok)
	assert.Len(t, c.UpcomingRegressions, 1, "an undue slot must not be consumed")
}

func TestCronJob_PopDueSlot_EmptyQueue(t *testing.T) {
	c := &CronJob{}
	_, ok := c.PopDueSlot(time.Now())
	assert.False(t, ok)
}

func TestCronJob_HasPendingSlot(t *testing.T) {
	c := &CronJob{}
	assert.False(t, c.HasPendingSlot())

	c.UpcomingRegressions = append(c.UpcomingRegressions, RegressionSlot{DueAt: time.Now()})
	assert.True(t, c.HasPendingSlot())
}

func TestCronJob_Clone_IsIndependentOfSource(t *testing.T) {
	c := &CronJob{
		ID:                  uuid.New(),
		UpcomingRegressions: []RegressionSlot{{DueAt: time.Now()}},
	}
	clone := c.Clone()
	clone.UpcomingRegressions[0].Config.KickOffReminder = true

	assert.False(t, c.UpcomingRegressions[0].Config.KickOffReminder, "mutating the clone must not affect the source")
	assert.Equal(t, c.ID, clone.ID)
}

func TestCronJob_Clone_Nil(t *testing.T) {
	var c *CronJob
	assert.Nil(t, c.Clone())
}
