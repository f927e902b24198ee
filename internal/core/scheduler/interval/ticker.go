// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package interval implements scheduler.TickSource on top of the
// standard library's time.Ticker, the default cadence named in
// spec.md §4.7.
package interval

import "time"

// Feature: CORE_SCHEDULER_INTERVAL_TICKSOURCE
// Spec: spec/core/scheduler.md#interval

// DefaultPeriod is the Global Scheduler's default tick cadence.
const DefaultPeriod = 60 * time.Second

// Ticker is a scheduler.TickSource backed by time.NewTicker. There is
// no ecosystem library for a plain fixed-interval timer worth pulling
// in over the standard library's time.Ticker; the abstraction it sits
// behind (scheduler.TickSource) is what makes it swappable.
type Ticker struct {
	period time.Duration
	ticker *time.Ticker
	out    chan struct{}
	done   chan struct{}
}

// New builds a Ticker with the given period. A period <= 0 uses
// DefaultPeriod.
func New(period time.Duration) *Ticker {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Ticker{period: period}
}

func (t *Ticker) Start() <-chan struct{} {
	t.ticker = time.NewTicker(t.period)
	t.out = make(chan struct{}, 1)
	t.done = make(chan struct{})

	go func() {
		for {
			select {
			case <-t.ticker.C:
				select {
				case t.out <- struct{}{}:
				default:
					// Previous tick still pending consumption; drop this
					// one rather than block (spec.md §4.7: ticks are a
					// trigger signal, not a queue).
				}
			case <-t.done:
				return
			}
		}
	}()

	return t.out
}

func (t *Ticker) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
	if t.done != nil {
		close(t.done)
	}
}
