// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package restapi implements testmgmt.TestManagementRun against a
// generic REST-backed test management tool (TestRail/Zephyr-shaped),
// via hashicorp/go-retryablehttp and tidwall/gjson.
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

	"releaseorchestrator/pkg/providers/testmgmt"
)

// Feature: ADAPTER_TESTMGMT_RESTAPI
// Spec: spec/providers/testmgmt/restapi.md

// Config carries the connection details for one test-management integration.
type Config struct {
	BaseURL   string `yaml:"baseUrl"`
	AuthToken string `yaml:"authToken"`
	ProjectID string `yaml:"projectId"`
}

// Adapter is a REST-backed testmgmt.TestManagementRun.
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
		return nil, fmt.Errorf("calling test management backend: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading test management response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("test management backend returned %d: %s", resp.StatusCode, string(out))
	}
	return out, nil
}

func (a *Adapter) CreateTestRuns(ctx context.Context, opts testmgmt.CreateTestRunsOptions) ([]testmgmt.TestRunResult, error) {
	body, err := a.do(ctx, http.MethodPost, "/projects/"+a.cfg.ProjectID+"/runs/bulk", map[string]any{
		"platforms": opts.Platforms,
		"cycleTag":  opts.CycleTag,
	})
	if err != nil {
		return nil, err
	}

	results := make([]testmgmt.TestRunResult, 0, len(opts.Platforms))
	gjson.GetBytes(body, "runs").ForEach(func(_, value gjson.Result) bool {
		results = append(results, testmgmt.TestRunResult{
			Platform: value.Get("platform").String(),
			RunID:    value.Get("runId").String(),
		})
		return true
	})
	return results, nil
}

func (a *Adapter) ResetTestRun(ctx context.Context, runID string) (testmgmt.TestRunResult, error) {
	body, err := a.do(ctx, http.MethodPost, "/runs/"+runID+"/reset", nil)
	if err != nil {
		return testmgmt.TestRunResult{}, err
	}
	return testmgmt.TestRunResult{
		Platform: gjson.GetBytes(body, "platform").String(),
		RunID:    gjson.GetBytes(body, "runId").String(),
	}, nil
}

func (a *Adapter) GetTestStatus(ctx context.Context, runID string) (testmgmt.TestStatusResult, error) {
	body, err := a.do(ctx, http.MethodGet, "/runs/"+runID, nil)
	if err != nil {
		return testmgmt.TestStatusResult{}, err
	}
	return testmgmt.TestStatusResult{
		Status:    testmgmt.TestStatus(gjson.GetBytes(body, "status").String()),
		PassRate:  gjson.GetBytes(body, "passRate").Float(),
		Threshold: gjson.GetBytes(body, "threshold").Float(),
	}, nil
}
