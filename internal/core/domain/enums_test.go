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

	"github.com/stretchr/testify/assert"
)

func TestReleaseStatus_IsTerminal(t *testing.T) {
	assert.True(t, ReleaseStatusArchived.IsTerminal())
	assert.True(t, ReleaseStatusCompleted.IsTerminal())
	assert.False(t, ReleaseStatusInProgress.IsTerminal())
	assert.False(t, ReleaseStatusPaused.IsTerminal())
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	assert.True(t, TaskStatusCompleted.IsTerminal())
	assert.True(t, TaskStatusFailed.IsTerminal())
	assert.False(t, TaskStatusPending.IsTerminal())
	assert.False(t, TaskStatusInProgress.IsTerminal())
}

func TestCategoryOf_KnownCategoryA(t *testing.T) {
	assert.Equal(t, CategoryA, CategoryOf(TaskTypeCreateProjectManagementTix))
	assert.Equal(t, CategoryA, CategoryOf(TaskTypeCreateTestSuite))
	assert.Equal(t, CategoryA, CategoryOf(TaskTypeTriggerPreRegressionBuilds))
	assert.Equal(t, CategoryA, CategoryOf(TaskTypeTriggerRegressionBuilds))
	assert.Equal(t, CategoryA, CategoryOf(TaskTypeTriggerAutomationRuns))
	assert.Equal(t, CategoryA, CategoryOf(TaskTypeTriggerTestFlightBuild))
}

func TestCategoryOf_DefaultsToCategoryB(t *testing.T) {
	assert.Equal(t, CategoryB, CategoryOf(TaskTypeForkBranch))
	assert.Equal(t, CategoryB, CategoryOf(TaskTypeCreateRCTag))
	assert.Equal(t, CategoryB, CategoryOf(TaskType("UNKNOWN")))
}
