// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cronsource implements scheduler.TickSource on top of
// robfig/cron/v3, for deployments that want the Global Scheduler to run
// on a cron expression (e.g. business-hours-only regression checks)
// rather than a fixed interval.
package cronsource

import (
	"github.com/robfig/cron/v3"
)

// Feature: CORE_SCHEDULER_CRON_TICKSOURCE
// Spec: spec/core/scheduler.md#cron

// Source is a scheduler.TickSource driven by a cron expression.
type Source struct {
	expr string
	cron *cron.Cron
	out  chan struct{}
}

// New builds a Source that ticks according to the standard 5-field cron
// expression spec (no seconds field, matching robfig/cron/v3's default
// parser).
func New(expr string) *Source {
	return &Source{expr: expr}
}

func (s *Source) Start() <-chan struct{} {
	s.out = make(chan struct{}, 1)
	s.cron = cron.New()
	_, _ = s.cron.AddFunc(s.expr, func() {
		select {
		case s.out <- struct{}{}:
		default:
		}
	})
	s.cron.Start()
	return s.out
}

func (s *Source) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}
