// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package pmticket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPMTicket struct{ id string }

func (s stubPMTicket) ID() string { return s.id }
func (s stubPMTicket) CreateTickets(ctx context.Context, opts CreateTicketsOptions) ([]TicketResult, error) {
	return nil, nil
}
func (s stubPMTicket) CheckTicketStatus(ctx context.Context, key string) (TicketResult, error) {
	return TicketResult{}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(stubPMTicket{id: "jira"})

	p, err := r.Get("jira")
	require.NoError(t, err)
	assert.Equal(t, "jira", p.ID())
}

func TestRegistry_Get_UnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistry_Register_PanicsOnDuplicateID(t *testing.T) {
	r := NewRegistry()
	r.Register(stubPMTicket{id: "jira"})
	assert.Panics(t, func() { r.Register(stubPMTicket{id: "jira"}) })
}
