// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package scheduler implements the Global Scheduler (spec.md §4.7):
// on each tick, it fans out across candidate CronJobs with bounded
// concurrency, acquiring a lease per release before running its
// orchestrator.
package scheduler

// Feature: CORE_SCHEDULER_TICKSOURCE
// Spec: spec/core/scheduler.md

// TickSource is the pluggable timer abstraction the Global Scheduler
// consumes. Two implementations are provided: interval (a plain
// time.Ticker) and cronsource (robfig/cron/v3 expressions), so the tick
// cadence is a deployment choice, not a core one.
type TickSource interface {
	// Start begins delivering ticks on the returned channel until Stop is
	// called.
	Start() <-chan struct{}
	Stop()
}
