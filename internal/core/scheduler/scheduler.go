// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package scheduler

import (
	"context"
	"sync"
	"time"

	"releaseorchestrator/internal/core/domain"
	"releaseorchestrator/internal/core/lease"
	"releaseorchestrator/internal/core/orchestrator"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/pkg/logging"
)

// Feature: CORE_SCHEDULER_GLOBAL
// Spec: spec/core/scheduler.md

// DefaultConcurrency bounds how many releases the Global Scheduler
// drives at once per tick (spec.md §4.7, §5: "bounded worker pool").
const DefaultConcurrency = 8

// DefaultShutdownGrace is how long Stop waits for in-flight releases to
// finish before returning.
const DefaultShutdownGrace = 30 * time.Second

// Scheduler is the Global Scheduler (spec.md §4.7): on every tick it
// queries FindRunningCandidates and fans out across them with bounded
// concurrency, acquiring each release's lease before running its
// Orchestrator.
type Scheduler struct {
	Store         *repo.Store
	Orchestrator  *orchestrator.Orchestrator
	Lease         *lease.Manager
	Logger        logging.Logger
	Tick          TickSource
	Concurrency   int
	ShutdownGrace time.Duration
	Now           func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Run blocks, driving ticks until ctx is cancelled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) {
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	s.stopCh = make(chan struct{})
	ticks := s.Tick.Start()
	defer s.Tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticks:
			s.runOneTick(ctx, concurrency)
		}
	}
}

// Stop signals Run to exit and waits up to ShutdownGrace for in-flight
// release work to finish (spec.md §5: "graceful shutdown with a grace
// period").
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
		}
	})

	grace := s.ShutdownGrace
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		s.Logger.Warn("scheduler shutdown grace period elapsed with releases still in flight")
	}
}

func (s *Scheduler) runOneTick(ctx context.Context, concurrency int) {
	candidates, err := s.Store.CronJobs.FindRunningCandidates(ctx, s.now())
	if err != nil {
		s.Logger.Error("failed to list running candidates", logging.NewField("cause", err.Error()))
		return
	}

	sem := make(chan struct{}, concurrency)
	for _, cronJob := range candidates {
		cronJob := cronJob
		sem <- struct{}{}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-sem }()
			s.runOne(ctx, cronJob)
		}()
	}
}

// runOne runs a single release's orchestrator under its lease. Errors
// are isolated per release (spec.md §4.7: "one release's failure never
// blocks another's tick").
func (s *Scheduler) runOne(ctx context.Context, cronJob *domain.CronJob) {
	ran, err := s.Lease.WithLease(ctx, cronJob.ID, func(ctx context.Context) error {
		return s.Orchestrator.Run(ctx, cronJob)
	})
	if err != nil {
		s.Logger.Error("orchestrator tick failed", logging.NewField("cronJobId", cronJob.ID), logging.NewField("releaseId", cronJob.ReleaseID), logging.NewField("cause", err.Error()))
		return
	}
	if !ran {
		s.Logger.Debug("skipped release due to lease contention", logging.NewField("cronJobId", cronJob.ID))
	}
}
