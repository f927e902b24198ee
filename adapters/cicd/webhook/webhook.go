// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package webhook implements cicd.CICDWorkflow against a generic
// webhook-triggered CI/CD backend (Jenkins, a GitHub Actions
// repository-dispatch proxy, etc.) via hashicorp/go-retryablehttp, which
// retries transient 5xx/network failures with exponential backoff
// before the call ever reaches the Task Executor's circuit breaker.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"releaseorchestrator/pkg/providers/cicd"
)

// Feature: ADAPTER_CICD_WEBHOOK
// Spec: spec/providers/cicd/webhook.md

// Config carries the connection details for one CI/CD webhook backend.
type Config struct {
	BaseURL   string `yaml:"baseUrl"`
	AuthToken string `yaml:"authToken"`
}

// Adapter is a webhook-backed cicd.CICDWorkflow.
type Adapter struct {
	id     string
	cfg    Config
	client *retryablehttp.Client
}

// New builds a webhook Adapter. Logging is disabled on the retry client
// since the executor's own logger records failures at the task level.
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
		return nil, fmt.Errorf("calling CI/CD backend: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading CI/CD response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("CI/CD backend returned %d: %s", resp.StatusCode, string(out))
	}
	return out, nil
}

func (a *Adapter) Trigger(ctx context.Context, opts cicd.TriggerOptions) (cicd.TriggerResult, error) {
	body, err := a.do(ctx, http.MethodPost, "/dispatch", map[string]any{
		"platform":    opts.Platform,
		"branch":      opts.Branch,
		"environment": opts.Environment,
		"version":     opts.Version,
	})
	if err != nil {
		return cicd.TriggerResult{}, err
	}

	return cicd.TriggerResult{
		RunID:       gjson.GetBytes(body, "runId").String(),
		BuildNumber: gjson.GetBytes(body, "buildNumber").String(),
	}, nil
}

func (a *Adapter) GetStatus(ctx context.Context, runID string) (cicd.StatusResult, error) {
	body, err := a.do(ctx, http.MethodGet, "/runs/"+runID, nil)
	if err != nil {
		return cicd.StatusResult{}, err
	}

	status := cicd.RunStatus(gjson.GetBytes(body, "status").String())
	detail := map[string]any{}
	gjson.GetBytes(body, "detail").ForEach(func(key, value gjson.Result) bool {
		detail[key.String()] = value.Value()
		return true
	})
	return cicd.StatusResult{Status: status, Detail: detail}, nil
}

// FindDispatchedRun asks the backend whether a run matching opts was
// already dispatched, supporting the Task Executor's idempotency
// contract across process crashes (spec.md §4.4).
func (a *Adapter) FindDispatchedRun(ctx context.Context, opts cicd.TriggerOptions) (cicd.TriggerResult, bool, error) {
	body, err := a.do(ctx, http.MethodGet, fmt.Sprintf("/runs?branch=%s&environment=%s&version=%s", opts.Branch, opts.Environment, opts.Version), nil)
	if err != nil {
		return cicd.TriggerResult{}, false, err
	}
	if !gjson.GetBytes(body, "found").Bool() {
		return cicd.TriggerResult{}, false, nil
	}
	return cicd.TriggerResult{
		RunID:       gjson.GetBytes(body, "runId").String(),
		BuildNumber: gjson.GetBytes(body, "buildNumber").String(),
	}, true, nil
}
