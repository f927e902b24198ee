// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package restapi implements pmticket.PMTicket against a generic
// REST-backed project-management tool (Jira-shaped), via
// hashicorp/go-retryablehttp and tidwall/gjson.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"releaseorchestrator/pkg/providers/pmticket"
)

// Feature: ADAPTER_PMTICKET_RESTAPI
// Spec: spec/providers/pmticket/restapi.md

// Config carries the connection details for one PM-ticket integration.
type Config struct {
	BaseURL   string `yaml:"baseUrl"`
	AuthToken string `yaml:"authToken"`
	ProjectID string `yaml:"projectId"`
}

// Adapter is a REST-backed pmticket.PMTicket.
type Adapter struct {
	id     string
	cfg    Config
	client *retryablehttp.Client
}

func New(id string, cfg Config) *Adapter {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return &Adapter{id: id, cfg: cfg, client: client}
}

func (a *Adapter) ID() string { return a.id }

func (a *Adapter) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.AuthToken)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling PM ticket backend: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading PM ticket response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("PM ticket backend returned %d: %s", resp.StatusCode, string(out))
	}
	return out, nil
}

// CreateTickets creates one ticket per configured platform with a single
// request to the backend's bulk-create endpoint, which batches them
// server-side (spec.md §4.4: "create one ticket per configured platform").
func (a *Adapter) CreateTickets(ctx context.Context, opts pmticket.CreateTicketsOptions) ([]pmticket.TicketResult, error) {
	body, err := a.do(ctx, http.MethodPost, "/projects/"+a.cfg.ProjectID+"/tickets/bulk", map[string]any{
		"platforms": opts.Platforms,
		"summary":   opts.Summary,
	})
	if err != nil {
		return nil, err
	}

	results := make([]pmticket.TicketResult, 0, len(opts.Platforms))
	gjson.GetBytes(body, "tickets").ForEach(func(_, value gjson.Result) bool {
		results = append(results, pmticket.TicketResult{
			Platform: value.Get("platform").String(),
			Key:      value.Get("key").String(),
			Status:   value.Get("status").String(),
		})
		return true
	})
	return results, nil
}

func (a *Adapter) CheckTicketStatus(ctx context.Context, ticketKey string) (pmticket.TicketResult, error) {
	body, err := a.do(ctx, http.MethodGet, "/tickets/"+ticketKey, nil)
	if err != nil {
		return pmticket.TicketResult{}, err
	}
	return pmticket.TicketResult{
		Platform: gjson.GetBytes(body, "platform").String(),
		Key:      gjson.GetBytes(body, "key").String(),
		Status:   gjson.GetBytes(body, "status").String(),
	}, nil
}
