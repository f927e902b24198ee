// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package slack implements messaging.Messaging against Slack via
// slack-go/slack, the reference Messaging adapter named in SPEC_FULL.md
// §4.9.
package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"releaseorchestrator/pkg/providers/messaging"
)

// Feature: ADAPTER_MESSAGING_SLACK
// Spec: spec/providers/messaging/slack.md

// templates maps a notification template name to a human-readable
// message format. Unknown templates fall back to a generic line rather
// than failing, since messaging is fire-and-forget (spec.md §4.9).
var templates = map[string]string{
	"pre-kickoff reminder":              "Heads up: release %s kicks off soon.",
	"regression build message":          "Regression build ready for %s.",
	"post-regression message":           "Post-regression checks ready for %s.",
	"cherry-pick divergence detected":   "Cherry-pick divergence detected on %s.",
}

// Adapter is a Slack-backed messaging.Messaging.
type Adapter struct {
	id     string
	client *slack.Client
}

// New builds a Slack Adapter using a bot token.
func New(id, token string) *Adapter {
	return &Adapter{id: id, client: slack.New(token)}
}

func (a *Adapter) ID() string { return a.id }

// SendNotification posts a templated message to the given channel. Per
// spec.md §4.9, errors are returned to the caller, which is responsible
// for logging and never propagating them into task failure.
func (a *Adapter) SendNotification(ctx context.Context, n messaging.Notification) error {
	format, ok := templates[n.Template]
	if !ok {
		format = "%s: " + n.Template
	}

	branch := n.Vars["branch"]
	text := fmt.Sprintf(format, branch)
	if len(n.Vars) > 1 {
		var extras []string
		for k, v := range n.Vars {
			if k == "branch" {
				continue
			}
			extras = append(extras, fmt.Sprintf("%s=%s", k, v))
		}
		text = text + " (" + strings.Join(extras, ", ") + ")"
	}

	_, _, err := a.client.PostMessageContext(ctx, n.Channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting to slack channel %q: %w", n.Channel, err)
	}
	return nil
}
