// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package domain defines the release orchestrator's entities, enums, and
// the per-stage task ordering tables that the core consumes.
package domain

// Feature: CORE_DOMAIN_MODEL
// Spec: spec/domain/model.md

// PlatformName is a closed set of release platforms.
type PlatformName string

const (
	PlatformAndroid PlatformName = "ANDROID"
	PlatformIOS     PlatformName = "IOS"
	PlatformWeb     PlatformName = "WEB"
)

// TargetName is a closed set of distribution targets.
type TargetName string

const (
	TargetPlayStore TargetName = "PLAY_STORE"
	TargetAppStore  TargetName = "APP_STORE"
	TargetWeb       TargetName = "WEB"
)

// ReleaseType classifies the kind of release.
type ReleaseType string

const (
	ReleaseTypeMajor  ReleaseType = "MAJOR"
	ReleaseTypeMinor  ReleaseType = "MINOR"
	ReleaseTypeHotfix ReleaseType = "HOTFIX"
)

// ReleaseStatus is the lifecycle status of a Release.
type ReleaseStatus string

const (
	ReleaseStatusPending     ReleaseStatus = "PENDING"
	ReleaseStatusInProgress  ReleaseStatus = "IN_PROGRESS"
	ReleaseStatusPaused      ReleaseStatus = "PAUSED"
	ReleaseStatusSubmitted   ReleaseStatus = "SUBMITTED"
	ReleaseStatusCompleted   ReleaseStatus = "COMPLETED"
	ReleaseStatusArchived    ReleaseStatus = "ARCHIVED"
)

// IsTerminal reports whether the release status admits no further stage
// progression (spec.md §3: "ARCHIVED and COMPLETED are terminal").
func (s ReleaseStatus) IsTerminal() bool {
	return s == ReleaseStatusArchived || s == ReleaseStatusCompleted
}

// StageStatus is the status of one of a CronJob's three stages.
type StageStatus string

const (
	StageStatusPending    StageStatus = "PENDING"
	StageStatusInProgress StageStatus = "IN_PROGRESS"
	StageStatusCompleted  StageStatus = "COMPLETED"
)

// CronStatus is the overall orchestration status of a CronJob.
type CronStatus string

const (
	CronStatusPending   CronStatus = "PENDING"
	CronStatusRunning   CronStatus = "RUNNING"
	CronStatusPaused    CronStatus = "PAUSED"
	CronStatusCompleted CronStatus = "COMPLETED"
)

// PauseType explains why a CronJob is paused.
type PauseType string

const (
	PauseTypeNone                  PauseType = "NONE"
	PauseTypeUserRequested         PauseType = "USER_REQUESTED"
	PauseTypeTaskFailure           PauseType = "TASK_FAILURE"
	PauseTypeAwaitingStageTrigger  PauseType = "AWAITING_STAGE_TRIGGER"
)

// TaskStage names the stage a ReleaseTask belongs to.
type TaskStage string

const (
	TaskStageKickoff        TaskStage = "KICKOFF"
	TaskStageRegression     TaskStage = "REGRESSION"
	TaskStagePostRegression TaskStage = "POST_REGRESSION"
)

// TaskStatus is the lifecycle status of a ReleaseTask.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// IsTerminal reports whether the task status is one of the two terminal
// states named in spec.md §3.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskType is the closed set of task kinds a ReleaseTask may carry
// (spec.md §6.1).
type TaskType string

const (
	// Kickoff stage.
	TaskTypePreKickOffReminder          TaskType = "PRE_KICK_OFF_REMINDER"
	TaskTypeForkBranch                  TaskType = "FORK_BRANCH"
	TaskTypeCreateProjectManagementTix  TaskType = "CREATE_PROJECT_MANAGEMENT_TICKET"
	TaskTypeCreateTestSuite             TaskType = "CREATE_TEST_SUITE"
	TaskTypeTriggerPreRegressionBuilds  TaskType = "TRIGGER_PRE_REGRESSION_BUILDS"

	// Regression stage.
	TaskTypeResetTestSuite             TaskType = "RESET_TEST_SUITE"
	TaskTypeCreateRCTag                TaskType = "CREATE_RC_TAG"
	TaskTypeCreateReleaseNotes         TaskType = "CREATE_RELEASE_NOTES"
	TaskTypeTriggerRegressionBuilds    TaskType = "TRIGGER_REGRESSION_BUILDS"
	TaskTypeTriggerAutomationRuns      TaskType = "TRIGGER_AUTOMATION_RUNS"
	TaskTypeAutomationRuns             TaskType = "AUTOMATION_RUNS"
	TaskTypeSendRegressionBuildMessage TaskType = "SEND_REGRESSION_BUILD_MESSAGE"

	// Post-regression (Pre-Release) stage.
	TaskTypePreReleaseCherryPicksReminder TaskType = "PRE_RELEASE_CHERRY_PICKS_REMINDER"
	TaskTypeCreateReleaseTag              TaskType = "CREATE_RELEASE_TAG"
	TaskTypeCreateFinalReleaseNotes        TaskType = "CREATE_FINAL_RELEASE_NOTES"
	TaskTypeTriggerTestFlightBuild         TaskType = "TRIGGER_TEST_FLIGHT_BUILD"
	TaskTypeSendPostRegressionMessage      TaskType = "SEND_POST_REGRESSION_MESSAGE"
	TaskTypeCheckProjectReleaseApproval    TaskType = "CHECK_PROJECT_RELEASE_APPROVAL"
)

// TaskCategory distinguishes how a task's provider result is persisted
// (spec.md §4.1).
type TaskCategory int

const (
	// CategoryA tasks return a single identifier string stored in both
	// ExternalID and ExternalData["externalId"].
	CategoryA TaskCategory = iota
	// CategoryB tasks return a structured object stored in ExternalData,
	// with ExternalID left nil.
	CategoryB
)

// categoryByTaskType is the closed lookup named in spec.md §4.1.
var categoryByTaskType = map[TaskType]TaskCategory{
	TaskTypeCreateProjectManagementTix: CategoryA,
	TaskTypeCreateTestSuite:            CategoryA,
	TaskTypeTriggerPreRegressionBuilds: CategoryA,
	TaskTypeTriggerRegressionBuilds:    CategoryA,
	TaskTypeTriggerAutomationRuns:      CategoryA,
	TaskTypeTriggerTestFlightBuild:     CategoryA,
}

// CategoryOf returns the category of a task type. Any type absent from
// the explicit Category-A set is Category B.
func CategoryOf(t TaskType) TaskCategory {
	if c, ok := categoryByTaskType[t]; ok {
		return c
	}
	return CategoryB
}

// RegressionCycleStatus is the lifecycle status of a RegressionCycle.
type RegressionCycleStatus string

const (
	RegressionCycleNotStarted RegressionCycleStatus = "NOT_STARTED"
	RegressionCycleStarted    RegressionCycleStatus = "STARTED"
	RegressionCycleInProgress RegressionCycleStatus = "IN_PROGRESS"
	RegressionCycleDone       RegressionCycleStatus = "DONE"
)
