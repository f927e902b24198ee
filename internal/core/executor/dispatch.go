// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
	"releaseorchestrator/pkg/providers/cicd"
	"releaseorchestrator/pkg/providers/messaging"
	"releaseorchestrator/pkg/providers/pmticket"
	"releaseorchestrator/pkg/providers/scm"
	"releaseorchestrator/pkg/providers/testmgmt"
)

// Feature: CORE_TASK_EXECUTOR_DISPATCH
// Spec: spec/core/task-executor.md

// dispatchTable implements the "Key dispatch rules" named in spec.md
// §4.4, one handler per TaskType.
var dispatchTable = map[domain.TaskType]handlerFunc{
	domain.TaskTypeForkBranch:                     handleForkBranch,
	domain.TaskTypePreKickOffReminder:              handleNotifyOnly("pre-kickoff reminder"),
	domain.TaskTypeCreateProjectManagementTix:      handleCreateProjectManagementTicket,
	domain.TaskTypeCreateTestSuite:                 handleCreateTestSuite,
	domain.TaskTypeTriggerPreRegressionBuilds:      handleTriggerBuilds("pre-regression"),
	domain.TaskTypeResetTestSuite:                  handleResetTestSuite,
	domain.TaskTypeCreateRCTag:                     handleCreateTag("rc"),
	domain.TaskTypeCreateReleaseNotes:              handleCreateReleaseNotes,
	domain.TaskTypeTriggerRegressionBuilds:         handleTriggerBuilds("regression"),
	domain.TaskTypeTriggerAutomationRuns:           handleTriggerAutomationRuns,
	domain.TaskTypeAutomationRuns:                  handleAutomationRunStatus,
	domain.TaskTypeSendRegressionBuildMessage:      handleNotifyOnly("regression build message"),
	domain.TaskTypePreReleaseCherryPicksReminder:   handleCherryPickReminder,
	domain.TaskTypeCreateReleaseTag:                handleCreateTag("release"),
	domain.TaskTypeCreateFinalReleaseNotes:         handleCreateReleaseNotes,
	domain.TaskTypeTriggerTestFlightBuild:          handleTriggerTestFlightBuild,
	domain.TaskTypeSendPostRegressionMessage:       handleNotifyOnly("post-regression message"),
	domain.TaskTypeCheckProjectReleaseApproval:     handleCheckProjectReleaseApproval,
}

func breakerCall[T any](e *Executor, providerID string, fn func() (T, error)) (T, error) {
	raw, err := e.Breakers.Call(providerID, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return raw.(T), nil
}

// handleForkBranch forks the release branch off the configured base
// branch (spec.md §4.4, §6.1: Stage-1 FORK_BRANCH).
func handleForkBranch(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	_, err := breakerCall(e, e.Providers.SCM.ID(), func() (struct{}, error) {
		return struct{}{}, e.Providers.SCM.ForkBranch(ctx, scm.ForkBranchOptions{
			BaseBranch: ec.Release.BaseBranch,
			NewBranch:  ec.Release.Branch,
		})
	})
	if err != nil {
		return result{}, err
	}
	return result{Data: map[string]any{"branch": ec.Release.Branch}}, nil
}

// handleNotifyOnly sends a templated notification and never fails the
// task on a messaging error (spec.md §4.9: messaging is fire-and-forget).
func handleNotifyOnly(template string) handlerFunc {
	return func(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
		_, err := breakerCall(e, e.Providers.Messaging.ID(), func() (struct{}, error) {
			return struct{}{}, e.Providers.Messaging.SendNotification(ctx, buildNotification(ec, template))
		})
		if err != nil {
			e.Logger.Warn("notification send failed, continuing", logging.NewField("taskId", task.ID), logging.NewField("template", template), logging.NewField("cause", err.Error()))
		}
		return result{Data: map[string]any{"template": template, "sent": err == nil}}, nil
	}
}

// buildNotification renders the template/variable pair a Messaging
// provider needs (spec.md §4.4, §4.9).
func buildNotification(ec ExecContext, template string) messaging.Notification {
	return messaging.Notification{
		Channel:  ec.Release.Branch,
		Template: template,
		Vars: map[string]string{
			"branch": ec.Release.Branch,
		},
	}
}

func handleCreateProjectManagementTicket(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	platforms := make([]string, 0, len(ec.Mappings))
	for _, p := range domain.PlatformsOf(ec.Mappings) {
		platforms = append(platforms, string(p))
	}
	tickets, err := breakerCall(e, e.Providers.PMTicket.ID(), func() ([]pmticket.TicketResult, error) {
		return e.Providers.PMTicket.CreateTickets(ctx, pmticket.CreateTicketsOptions{
			Platforms: platforms,
			Summary:   fmt.Sprintf("Release %s", ec.Release.Branch),
		})
	})
	if err != nil {
		return result{}, err
	}
	return result{ExternalID: primaryKey(ticketsToKeys(tickets)), Data: map[string]any{"tickets": tickets}}, nil
}

func ticketsToKeys(tickets []pmticket.TicketResult) []string {
	keys := make([]string, 0, len(tickets))
	for _, t := range tickets {
		keys = append(keys, t.Key)
	}
	return keys
}

func primaryKey(keys []string) *string {
	if len(keys) == 0 {
		return nil
	}
	return &keys[0]
}

func handleCreateTestSuite(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	platforms := platformStrings(ec.Mappings)
	runs, err := breakerCall(e, e.Providers.TestMgmt.ID(), func() ([]testmgmt.TestRunResult, error) {
		return e.Providers.TestMgmt.CreateTestRuns(ctx, testmgmt.CreateTestRunsOptions{
			Platforms: platforms,
			CycleTag:  ec.CycleTag,
		})
	})
	if err != nil {
		return result{}, err
	}
	return result{ExternalID: primaryRunID(runs), Data: map[string]any{"runs": runs}}, nil
}

func primaryRunID(runs []testmgmt.TestRunResult) *string {
	if len(runs) == 0 {
		return nil
	}
	id := runs[0].RunID
	return &id
}

// handleResetTestSuite resets the test run created by CREATE_TEST_SUITE
// in an earlier cycle (spec.md §4.4: "later cycles reset it"). The run
// ID lives on the platform mappings, not on this task, since this task
// itself carries no prior externalId.
func handleResetTestSuite(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	runID := existingTestRunID(ctx, e, ec)
	run, err := breakerCall(e, e.Providers.TestMgmt.ID(), func() (testmgmt.TestRunResult, error) {
		return e.Providers.TestMgmt.ResetTestRun(ctx, runID)
	})
	if err != nil {
		return result{}, err
	}
	return result{Data: map[string]any{"run": run}}, nil
}

func existingTestRunID(ctx context.Context, e *Executor, ec ExecContext) string {
	for _, m := range ec.Mappings {
		if m.TestManagementRunID != "" {
			return m.TestManagementRunID
		}
	}
	if t, err := e.Store.Tasks.FindByTaskType(ctx, ec.Release.ID, domain.TaskTypeCreateTestSuite); err == nil && t != nil && t.ExternalID != nil {
		return *t.ExternalID
	}
	return ""
}

func handleCreateTag(kind string) handlerFunc {
	return func(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
		tag := ec.CycleTag
		if kind == "release" {
			tag = fmt.Sprintf("v%s", versionOf(ec.Mappings))
		}
		_, err := breakerCall(e, e.Providers.SCM.ID(), func() (struct{}, error) {
			return struct{}{}, e.Providers.SCM.CreateTag(ctx, scm.CreateTagOptions{
				Branch:  ec.Release.Branch,
				Tag:     tag,
				Message: fmt.Sprintf("%s tag %s", kind, tag),
			})
		})
		if err != nil {
			return result{}, err
		}
		return result{Data: map[string]any{"tag": tag}}, nil
	}
}

func versionOf(mappings []domain.PlatformTargetMapping) string {
	if len(mappings) == 0 {
		return ""
	}
	return mappings[0].Version
}

func handleCreateReleaseNotes(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	notes, err := breakerCall(e, e.Providers.SCM.ID(), func() (string, error) {
		return e.Providers.SCM.CreateReleaseNotes(ctx, scm.CreateReleaseNotesOptions{
			FromRef: ec.Release.BaseBranch,
			ToRef:   ec.Release.Branch,
		})
	})
	if err != nil {
		return result{}, err
	}
	return result{Data: map[string]any{"notes": notes}}, nil
}

func handleTriggerBuilds(environment string) handlerFunc {
	return func(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
		if runID, ok := alreadyDispatched(task); ok {
			status, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.StatusResult, error) {
				return e.Providers.CICD.GetStatus(ctx, runID)
			})
			if err != nil {
				return result{}, err
			}
			return result{ExternalID: &runID, Data: map[string]any{"status": status}}, nil
		}

		platforms := domain.PlatformsOf(ec.Mappings)
		results := make([]cicd.TriggerResult, 0, len(platforms))
		runIDs := make([]string, 0, len(platforms))
		for _, platform := range platforms {
			opts := cicd.TriggerOptions{
				Platform:    string(platform),
				Branch:      ec.Release.Branch,
				Environment: environment,
				Version:     versionOf(ec.Mappings),
			}
			tr, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.TriggerResult, error) {
				found, ok, ferr := e.Providers.CICD.FindDispatchedRun(ctx, opts)
				if ferr != nil {
					return cicd.TriggerResult{}, ferr
				}
				if ok {
					return found, nil
				}
				return e.Providers.CICD.Trigger(ctx, opts)
			})
			if err != nil {
				return result{}, err
			}
			results = append(results, tr)
			runIDs = append(runIDs, tr.RunID)

			if e.Store.Builds != nil {
				build := &repo.Build{
					ID:           uuid.New(),
					ReleaseID:    ec.Release.ID,
					RegressionID: task.RegressionID,
					Platform:     platform,
					BuildNumber:  tr.RunID,
					CreatedAt:    e.now(),
				}
				if berr := e.Store.Builds.Create(ctx, build); berr != nil {
					return result{}, berr
				}
			}
		}
		var externalID *string
		if len(runIDs) > 0 {
			joined := strings.Join(runIDs, ",")
			externalID = &joined
		}
		return result{ExternalID: externalID, Data: map[string]any{"builds": results}}, nil
	}
}

func handleTriggerAutomationRuns(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	if runID, ok := alreadyDispatched(task); ok {
		status, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.StatusResult, error) {
			return e.Providers.CICD.GetStatus(ctx, runID)
		})
		if err != nil {
			return result{}, err
		}
		return result{ExternalID: &runID, Data: map[string]any{"status": status}}, nil
	}
	tr, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.TriggerResult, error) {
		return e.Providers.CICD.Trigger(ctx, cicd.TriggerOptions{
			Branch:      ec.Release.Branch,
			Environment: "automation",
			Version:     versionOf(ec.Mappings),
		})
	})
	if err != nil {
		return result{}, err
	}
	return result{ExternalID: &tr.RunID, Data: map[string]any{"build": tr}}, nil
}

// handleAutomationRunStatus observes the automation run triggered by
// TRIGGER_AUTOMATION_RUNS (spec.md §6.1: AUTOMATION_RUNS is the
// companion observation task, never a trigger itself).
func handleAutomationRunStatus(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	triggerTask, err := e.Store.Tasks.FindByTaskType(ctx, ec.Release.ID, domain.TaskTypeTriggerAutomationRuns)
	if err != nil || triggerTask == nil || triggerTask.ExternalID == nil {
		return result{Data: map[string]any{"status": "unknown"}}, nil
	}
	status, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.StatusResult, error) {
		return e.Providers.CICD.GetStatus(ctx, *triggerTask.ExternalID)
	})
	if err != nil {
		return result{}, err
	}
	return result{Data: map[string]any{"status": status}}, nil
}

func handleCherryPickReminder(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	check, err := breakerCall(e, e.Providers.SCM.ID(), func() (scm.CherryPickCheckResult, error) {
		return e.Providers.SCM.CheckCherryPicks(ctx, scm.CherryPickCheckOptions{
			Branch:   ec.Release.Branch,
			SinceTag: ec.CycleTag,
		})
	})
	if err != nil {
		return result{}, err
	}
	if check.CherryPickAvailable {
		if nerr := e.Providers.Messaging.SendNotification(ctx, buildNotification(ec, "cherry-pick divergence detected")); nerr != nil {
			e.Logger.Warn("cherry-pick reminder send failed", logging.NewField("taskId", task.ID), logging.NewField("cause", nerr.Error()))
		}
	}
	return result{Data: map[string]any{"cherryPickAvailable": check.CherryPickAvailable, "divergentCommits": check.DivergentCommits}}, nil
}

func handleTriggerTestFlightBuild(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	if !domain.HasPlatform(ec.Mappings, domain.PlatformIOS) {
		return result{Data: map[string]any{"skipped": "no iOS platform mapping"}}, nil
	}
	if runID, ok := alreadyDispatched(task); ok {
		status, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.StatusResult, error) {
			return e.Providers.CICD.GetStatus(ctx, runID)
		})
		if err != nil {
			return result{}, err
		}
		return result{ExternalID: &runID, Data: map[string]any{"status": status}}, nil
	}
	tr, err := breakerCall(e, e.Providers.CICD.ID(), func() (cicd.TriggerResult, error) {
		return e.Providers.CICD.Trigger(ctx, cicd.TriggerOptions{
			Platform:    string(domain.PlatformIOS),
			Branch:      ec.Release.Branch,
			Environment: "testflight",
			Version:     versionOf(ec.Mappings),
		})
	})
	if err != nil {
		return result{}, err
	}
	return result{ExternalID: &tr.RunID, Data: map[string]any{"build": tr}}, nil
}

// handleCheckProjectReleaseApproval polls the PM ticket's current status
// and compares it against the configured completedStatus (spec.md §4.4:
// "poll the PM ticket's current status against the configured
// completedStatus; record both in externalData").
func handleCheckProjectReleaseApproval(ctx context.Context, e *Executor, task *domain.ReleaseTask, ec ExecContext) (result, error) {
	ticketTask, err := e.Store.Tasks.FindByTaskType(ctx, ec.Release.ID, domain.TaskTypeCreateProjectManagementTix)
	if err != nil || ticketTask == nil || ticketTask.ExternalID == nil {
		return result{Data: map[string]any{"status": "unknown", "completedStatus": ec.CronConfig.ApprovalCompletedStatus}}, nil
	}
	ticket, err := breakerCall(e, e.Providers.PMTicket.ID(), func() (pmticket.TicketResult, error) {
		return e.Providers.PMTicket.CheckTicketStatus(ctx, *ticketTask.ExternalID)
	})
	if err != nil {
		return result{}, err
	}
	approved := ec.CronConfig.ApprovalCompletedStatus != "" && ticket.Status == ec.CronConfig.ApprovalCompletedStatus
	return result{Data: map[string]any{
		"status":          ticket.Status,
		"completedStatus": ec.CronConfig.ApprovalCompletedStatus,
		"approved":        approved,
	}}, nil
}

func platformStrings(mappings []domain.PlatformTargetMapping) []string {
	platforms := domain.PlatformsOf(mappings)
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, string(p))
	}
	return out
}
