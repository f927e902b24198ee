// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cicd defines the CI/CD workflow capability set consumed by the
// Task Executor (spec.md §4.4, §6.4).
package cicd

import "context"

// Feature: PROVIDER_CICD_INTERFACE
// Spec: spec/providers/cicd/interface.md

// TriggerOptions carries the inputs for triggering one CI/CD run.
type TriggerOptions struct {
	Config      any
	Platform    string
	Branch      string
	Environment string
	Version     string
}

// TriggerResult reports the identifiers of a newly-triggered run.
type TriggerResult struct {
	RunID       string
	BuildNumber string
}

// RunStatus is the closed set of states a CI/CD run can be observed in.
type RunStatus string

const (
	RunStatusPending RunStatus = "PENDING"
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailure RunStatus = "FAILURE"
)

// StatusResult reports the current observed state of a run.
type StatusResult struct {
	Status RunStatus
	Detail map[string]any
}

// CICDWorkflow is the capability set named in spec.md §4.4.
type CICDWorkflow interface {
	ID() string
	Trigger(ctx context.Context, opts TriggerOptions) (TriggerResult, error)
	GetStatus(ctx context.Context, runID string) (StatusResult, error)
	// FindDispatchedRun resolves a run that was triggered but whose
	// RunID the executor lost (e.g. after a crash before persisting
	// externalId) to the underlying provider's workflow-dispatch
	// lookup, supporting the idempotency contract in spec.md §4.4.
	FindDispatchedRun(ctx context.Context, opts TriggerOptions) (TriggerResult, bool, error)
}
