// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package github implements scm.SCM against the GitHub REST API via
// google/go-github/v57, grounded on the retrieval pack's
// pkg/repository.GitHubClient construction pattern (oauth2 static token
// source, optional Enterprise base URL).
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"releaseorchestrator/pkg/providers/scm"
)

// Feature: ADAPTER_SCM_GITHUB
// Spec: spec/providers/scm/github.md

// Config carries the connection details for one GitHub-backed repo
// integration.
type Config struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"baseUrl"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
}

// Adapter is a GitHub-backed scm.SCM.
type Adapter struct {
	id     string
	client *github.Client
	cfg    Config
}

// New builds a GitHub Adapter. If cfg.Token is empty, the client is
// restricted to public repositories.
func New(id string, cfg Config) (*Adapter, error) {
	var client *github.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		client = github.NewClient(nil)
	}

	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub Enterprise URL: %w", err)
		}
	}

	return &Adapter{id: id, client: client, cfg: cfg}, nil
}

func (a *Adapter) ID() string { return a.id }

func (a *Adapter) ForkBranch(ctx context.Context, opts scm.ForkBranchOptions) error {
	baseRef, _, err := a.client.Git.GetRef(ctx, a.cfg.Owner, a.cfg.Repo, "refs/heads/"+opts.BaseBranch)
	if err != nil {
		return fmt.Errorf("resolving base branch %q: %w", opts.BaseBranch, err)
	}

	newRef := &github.Reference{
		Ref:    github.String("refs/heads/" + opts.NewBranch),
		Object: &github.GitObject{SHA: baseRef.Object.SHA},
	}
	_, _, err = a.client.Git.CreateRef(ctx, a.cfg.Owner, a.cfg.Repo, newRef)
	if err != nil {
		return fmt.Errorf("creating release branch %q: %w", opts.NewBranch, err)
	}
	return nil
}

func (a *Adapter) CreateTag(ctx context.Context, opts scm.CreateTagOptions) error {
	branchRef, _, err := a.client.Git.GetRef(ctx, a.cfg.Owner, a.cfg.Repo, "refs/heads/"+opts.Branch)
	if err != nil {
		return fmt.Errorf("resolving branch %q: %w", opts.Branch, err)
	}

	tagObj, _, err := a.client.Git.CreateTag(ctx, a.cfg.Owner, a.cfg.Repo, &github.Tag{
		Tag:     github.String(opts.Tag),
		Message: github.String(opts.Message),
		Object:  &github.GitObject{SHA: branchRef.Object.SHA, Type: github.String("commit")},
	})
	if err != nil {
		return fmt.Errorf("creating annotated tag %q: %w", opts.Tag, err)
	}

	tagRef := &github.Reference{
		Ref:    github.String("refs/tags/" + opts.Tag),
		Object: &github.GitObject{SHA: tagObj.SHA},
	}
	_, _, err = a.client.Git.CreateRef(ctx, a.cfg.Owner, a.cfg.Repo, tagRef)
	return err
}

func (a *Adapter) CreateReleaseNotes(ctx context.Context, opts scm.CreateReleaseNotesOptions) (string, error) {
	comparison, _, err := a.client.Repositories.CompareCommits(ctx, a.cfg.Owner, a.cfg.Repo, opts.FromRef, opts.ToRef, nil)
	if err != nil {
		return "", fmt.Errorf("comparing %s..%s: %w", opts.FromRef, opts.ToRef, err)
	}

	var notes strings.Builder
	for _, c := range comparison.Commits {
		fmt.Fprintf(&notes, "- %s (%s)\n", c.GetCommit().GetMessage(), c.GetCommit().GetAuthor().GetName())
	}
	return notes.String(), nil
}

func (a *Adapter) CheckCherryPicks(ctx context.Context, opts scm.CherryPickCheckOptions) (scm.CherryPickCheckResult, error) {
	comparison, _, err := a.client.Repositories.CompareCommits(ctx, a.cfg.Owner, a.cfg.Repo, opts.Branch, opts.SinceTag, nil)
	if err != nil {
		return scm.CherryPickCheckResult{}, fmt.Errorf("comparing %s..%s: %w", opts.Branch, opts.SinceTag, err)
	}

	if comparison.GetAheadBy() == 0 {
		return scm.CherryPickCheckResult{CherryPickAvailable: false}, nil
	}

	shas := make([]string, 0, len(comparison.Commits))
	for _, c := range comparison.Commits {
		shas = append(shas, c.GetSHA())
	}
	return scm.CherryPickCheckResult{CherryPickAvailable: true, DivergentCommits: shas}, nil
}
