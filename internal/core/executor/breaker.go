// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package executor

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Feature: CORE_TASK_EXECUTOR_RESILIENCE
// Spec: spec/core/task-executor.md

// BreakerSet holds one circuit breaker per provider capability, keyed by
// provider ID, so a flaky third party trips its own breaker without
// affecting the others (spec.md §1: "no exactly-once delivery to third
// parties"; §7: ProviderFailure). Settings mirror the pattern used for
// kubernaut's notification circuit breaker manager.
type BreakerSet struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerSet builds an empty BreakerSet.
func NewBreakerSet() *BreakerSet {
	return &BreakerSet{breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

func (b *BreakerSet) forProvider(providerID string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[providerID]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        providerID,
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	b.breakers[providerID] = cb
	return cb
}

// Call invokes fn through the named provider's breaker.
func (b *BreakerSet) Call(providerID string, fn func() (any, error)) (any, error) {
	return b.forProvider(providerID).Execute(fn)
}
