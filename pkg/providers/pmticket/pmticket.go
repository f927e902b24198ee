// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package pmticket defines the project-management-ticket capability set
// consumed by the Task Executor (spec.md §4.4, §6.4).
package pmticket

import "context"

// Feature: PROVIDER_PMTICKET_INTERFACE
// Spec: spec/providers/pmticket/interface.md

// CreateTicketsOptions carries the per-platform ticket requests for
// CREATE_PROJECT_MANAGEMENT_TICKET (spec.md §4.4: "create one ticket per
// configured platform in parallel").
type CreateTicketsOptions struct {
	Config    any
	Platforms []string
	Summary   string
}

// TicketResult is one created/observed ticket.
type TicketResult struct {
	Platform string
	Key      string
	Status   string
}

// PMTicket is the capability set named in spec.md §4.4.
type PMTicket interface {
	ID() string
	CreateTickets(ctx context.Context, opts CreateTicketsOptions) ([]TicketResult, error)
	CheckTicketStatus(ctx context.Context, ticketKey string) (TicketResult, error)
}
