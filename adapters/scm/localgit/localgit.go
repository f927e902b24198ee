// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package localgit implements scm.SCM by shelling out to a local git
// checkout, grounded on the teacher's internal/git.HistorySourceImpl
// pattern: explicit exec.CommandContext calls with a minimal, explicit
// environment rather than inheriting the process environment.
package localgit

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"releaseorchestrator/pkg/providers/scm"
)

// Feature: ADAPTER_SCM_LOCALGIT
// Spec: spec/providers/scm/localgit.md

// Adapter is a local-checkout-backed scm.SCM.
type Adapter struct {
	id       string
	repoPath string
}

// New builds a localgit Adapter rooted at repoPath.
func New(id, repoPath string) *Adapter {
	return &Adapter{id: id, repoPath: repoPath}
}

func (a *Adapter) ID() string { return a.id }

func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = a.repoPath
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"LANG=C",
		"LC_ALL=C",
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (a *Adapter) ForkBranch(ctx context.Context, opts scm.ForkBranchOptions) error {
	if _, err := a.run(ctx, "fetch", "origin", opts.BaseBranch); err != nil {
		return err
	}
	if _, err := a.run(ctx, "branch", opts.NewBranch, "origin/"+opts.BaseBranch); err != nil {
		return err
	}
	_, err := a.run(ctx, "push", "origin", opts.NewBranch)
	return err
}

func (a *Adapter) CreateTag(ctx context.Context, opts scm.CreateTagOptions) error {
	if _, err := a.run(ctx, "tag", "-a", opts.Tag, "-m", opts.Message, opts.Branch); err != nil {
		return err
	}
	_, err := a.run(ctx, "push", "origin", opts.Tag)
	return err
}

func (a *Adapter) CreateReleaseNotes(ctx context.Context, opts scm.CreateReleaseNotesOptions) (string, error) {
	return a.run(ctx, "log", "--pretty=format:- %s (%an)", opts.FromRef+".."+opts.ToRef)
}

// CheckCherryPicks reports commits present on the reference tag that are
// absent from the release branch (spec.md §9: preserves the literal
// "true means outstanding divergence" contract).
func (a *Adapter) CheckCherryPicks(ctx context.Context, opts scm.CherryPickCheckOptions) (scm.CherryPickCheckResult, error) {
	out, err := a.run(ctx, "log", "--pretty=format:%H", opts.Branch+".."+opts.SinceTag)
	if err != nil {
		return scm.CherryPickCheckResult{}, err
	}
	if out == "" {
		return scm.CherryPickCheckResult{CherryPickAvailable: false}, nil
	}
	commits := strings.Split(out, "\n")
	return scm.CherryPickCheckResult{CherryPickAvailable: true, DivergentCommits: commits}, nil
}
