// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package messaging defines the notification capability set consumed by
// the Task Executor and the Notification & Polling Dispatch collaborator
// (spec.md §4.4, §4.9, §6.4).
package messaging

import "context"

// Feature: PROVIDER_MESSAGING_INTERFACE
// Spec: spec/providers/messaging/interface.md

// Notification carries a templated message to send.
type Notification struct {
	Config   any
	Channel  string
	Template string
	Vars     map[string]string
}

// Messaging is the capability set named in spec.md §4.4. Failures are
// fire-and-forget per spec.md §4.9 — callers must log, never propagate,
// a SendNotification error into task failure.
type Messaging interface {
	ID() string
	SendNotification(ctx context.Context, n Notification) error
}
