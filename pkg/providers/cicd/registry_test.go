// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package cicd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCICD struct{ id string }

func (s stubCICD) ID() string { return s.id }
func (s stubCICD) Trigger(ctx context.Context, opts TriggerOptions) (TriggerResult, error) {
	return TriggerResult{}, nil
}
func (s stubCICD) GetStatus(ctx context.Context, runID string) (StatusResult, error) {
	return StatusResult{}, nil
}
func (s stubCICD) FindDispatchedRun(ctx context.Context, opts TriggerOptions) (TriggerResult, bool, error) {
	return TriggerResult{}, false, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(stubCICD{id: "circleci"})

	p, err := r.Get("circleci")
	require.NoError(t, err)
	assert.Equal(t, "circleci", p.ID())
}

func TestRegistry_Get_UnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistry_Register_PanicsOnDuplicateID(t *testing.T) {
	r := NewRegistry()
	r.Register(stubCICD{id: "circleci"})
	assert.Panics(t, func() { r.Register(stubCICD{id: "circleci"}) })
}

func TestRegistry_IDs_ReturnsLexicographicOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubCICD{id: "githubactions"})
	r.Register(stubCICD{id: "circleci"})

	assert.Equal(t, []string{"circleci", "githubactions"}, r.IDs())
}
