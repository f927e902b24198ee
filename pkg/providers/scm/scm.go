// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package scm defines the source-control capability set consumed by the
// Task Executor (spec.md §4.4, §6.4). Concrete adapters live outside the
// core under adapters/scm/*.
package scm

import "context"

// Feature: PROVIDER_SCM_INTERFACE
// Spec: spec/providers/scm/interface.md

// ForkBranchOptions carries the inputs for forking a release branch off
// baseBranch.
type ForkBranchOptions struct {
	RepoConfig any
	BaseBranch string
	NewBranch  string
}

// CreateTagOptions carries the inputs for tagging a commit.
type CreateTagOptions struct {
	RepoConfig any
	Branch     string
	Tag        string
	Message    string
}

// CreateReleaseNotesOptions carries the inputs for generating release
// notes text from a branch/tag range.
type CreateReleaseNotesOptions struct {
	RepoConfig any
	FromRef    string
	ToRef      string
}

// CherryPickCheckOptions carries the inputs for the divergence check
// named in spec.md §9 ("cherryPickAvailable").
type CherryPickCheckOptions struct {
	RepoConfig any
	Branch     string
	SinceTag   string
}

// CherryPickCheckResult reports whether the release branch has diverged
// from the reference tag.
//
// Preserves the literal contract recorded for the Open Question in
// spec.md §9: true means a divergence exists (cherry-picks are
// outstanding); false means the branch is aligned with the tag.
type CherryPickCheckResult struct {
	CherryPickAvailable bool
	DivergentCommits    []string
}

// SCM is the source-control capability set named in spec.md §4.4.
type SCM interface {
	ID() string
	ForkBranch(ctx context.Context, opts ForkBranchOptions) error
	CreateTag(ctx context.Context, opts CreateTagOptions) error
	CreateReleaseNotes(ctx context.Context, opts CreateReleaseNotesOptions) (string, error)
	CheckCherryPicks(ctx context.Context, opts CherryPickCheckOptions) (CherryPickCheckResult, error)
}
