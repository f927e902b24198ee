// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package executor

import (
	"releaseorchestrator/pkg/providers/cicd"
	"releaseorchestrator/pkg/providers/messaging"
	"releaseorchestrator/pkg/providers/pmticket"
	"releaseorchestrator/pkg/providers/scm"
	"releaseorchestrator/pkg/providers/testmgmt"
)

// Feature: CORE_TASK_EXECUTOR_PROVIDERS
// Spec: spec/core/task-executor.md

// Providers bundles the concrete provider instances resolved for one
// release's integration bundle (spec.md §3: "releaseConfigId (→
// integration bundle)"). Resolving *which* provider ID backs each
// capability for a given releaseConfigId is a Config CRUD concern the
// core does not own (spec.md §1: "Config CRUD ... are upstream producers
// of the orchestrator's input state") — callers build a Providers value
// once they have looked the IDs up and fetched instances from the
// pkg/providers/*.Registry.
type Providers struct {
	SCM      scm.SCM
	CICD     cicd.CICDWorkflow
	PMTicket pmticket.PMTicket
	TestMgmt testmgmt.TestManagementRun
	Messaging messaging.Messaging
}
