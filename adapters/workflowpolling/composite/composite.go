// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package composite implements workflowpolling.WorkflowPolling by
// dispatching each poll target to whichever of the CICDWorkflow,
// PMTicket, or TestManagementRun capability sets owns its task type,
// generalizing the per-capability adapters named in SPEC_FULL.md §4.9
// ("model the polling collaborator as a second tick source writing into
// externalData") into a single collaborator the Dispatcher can hold.
package composite

import (
	"context"
	"fmt"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/pkg/providers/cicd"
	"releaseorchestrator/pkg/providers/pmticket"
	"releaseorchestrator/pkg/providers/testmgmt"
	"releaseorchestrator/pkg/providers/workflowpolling"
)

// Feature: ADAPTER_WORKFLOWPOLLING_COMPOSITE
// Spec: spec/providers/workflowpolling/composite.md

var cicdTaskTypes = map[string]bool{
	string(domain.TaskTypeTriggerPreRegressionBuilds): true,
	string(domain.TaskTypeTriggerRegressionBuilds):    true,
	string(domain.TaskTypeTriggerAutomationRuns):      true,
	string(domain.TaskTypeTriggerTestFlightBuild):     true,
}

var pmTicketTaskTypes = map[string]bool{
	string(domain.TaskTypeCreateProjectManagementTix): true,
}

var testMgmtTaskTypes = map[string]bool{
	string(domain.TaskTypeCreateTestSuite): true,
	string(domain.TaskTypeResetTestSuite):  true,
}

// Adapter is a composite workflowpolling.WorkflowPolling.
type Adapter struct {
	id       string
	CICD     cicd.CICDWorkflow
	PMTicket pmticket.PMTicket
	TestMgmt testmgmt.TestManagementRun
}

func New(id string, c cicd.CICDWorkflow, p pmticket.PMTicket, tm testmgmt.TestManagementRun) *Adapter {
	return &Adapter{id: id, CICD: c, PMTicket: p, TestMgmt: tm}
}

func (a *Adapter) ID() string { return a.id }

// Poll refreshes each target's status against its owning capability set,
// returning a PollUpdate per target that answered successfully. A
// target whose task type owns no configured collaborator, or whose
// single lookup errors, is skipped rather than failing the whole batch —
// polling is best-effort observation, never a task failure path.
func (a *Adapter) Poll(ctx context.Context, targets []workflowpolling.PollTarget) ([]workflowpolling.PollUpdate, error) {
	var updates []workflowpolling.PollUpdate
	for _, t := range targets {
		update, ok, err := a.pollOne(ctx, t)
		if err != nil || !ok {
			continue
		}
		updates = append(updates, update)
	}
	return updates, nil
}

func (a *Adapter) pollOne(ctx context.Context, t workflowpolling.PollTarget) (workflowpolling.PollUpdate, bool, error) {
	switch {
	case cicdTaskTypes[t.TaskType] && a.CICD != nil:
		result, err := a.CICD.GetStatus(ctx, t.ExternalID)
		if err != nil {
			return workflowpolling.PollUpdate{}, false, fmt.Errorf("polling cicd run %s: %w", t.ExternalID, err)
		}
		data := map[string]any{"status": string(result.Status)}
		for k, v := range result.Detail {
			data[k] = v
		}
		terminal := result.Status == cicd.RunStatusSuccess || result.Status == cicd.RunStatusFailure
		return workflowpolling.PollUpdate{TaskID: t.TaskID, ExternalData: data, Terminal: terminal}, true, nil

	case pmTicketTaskTypes[t.TaskType] && a.PMTicket != nil:
		result, err := a.PMTicket.CheckTicketStatus(ctx, t.ExternalID)
		if err != nil {
			return workflowpolling.PollUpdate{}, false, fmt.Errorf("polling ticket %s: %w", t.ExternalID, err)
		}
		data := map[string]any{"status": result.Status, "key": result.Key, "platform": result.Platform}
		return workflowpolling.PollUpdate{TaskID: t.TaskID, ExternalData: data}, true, nil

	case testMgmtTaskTypes[t.TaskType] && a.TestMgmt != nil:
		result, err := a.TestMgmt.GetTestStatus(ctx, t.ExternalID)
		if err != nil {
			return workflowpolling.PollUpdate{}, false, fmt.Errorf("polling test run %s: %w", t.ExternalID, err)
		}
		data := map[string]any{
			"status":    string(result.Status),
			"passRate":  result.PassRate,
			"threshold": result.Threshold,
		}
		terminal := result.Status == testmgmt.TestStatusPassed || result.Status == testmgmt.TestStatusFailed
		return workflowpolling.PollUpdate{TaskID: t.TaskID, ExternalData: data, Terminal: terminal}, true, nil

	default:
		return workflowpolling.PollUpdate{}, false, nil
	}
}
