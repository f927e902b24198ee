// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package workflowpolling defines the asynchronous status-polling
// capability (spec.md §4.9, §6.4, §9): "model the polling collaborator
// as a second tick source writing into externalData; the orchestrator
// treats it as an external observer only."
package workflowpolling

import "context"

// Feature: PROVIDER_WORKFLOWPOLLING_INTERFACE
// Spec: spec/providers/workflowpolling/interface.md

// PollTarget names one in-flight task whose external status should be
// refreshed.
type PollTarget struct {
	TaskID     string
	ExternalID string
	TaskType   string
}

// PollUpdate is the result of refreshing one target's status.
type PollUpdate struct {
	TaskID       string
	ExternalData map[string]any
	Terminal     bool
}

// WorkflowPolling is the capability set consumed by the polling
// dispatcher; it never mutates TaskStatus directly — the orchestrator
// observes its writes to ExternalData on the next tick.
type WorkflowPolling interface {
	ID() string
	Poll(ctx context.Context, targets []PollTarget) ([]PollUpdate, error)
}
