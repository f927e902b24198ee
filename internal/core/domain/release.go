// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Feature: CORE_DOMAIN_RELEASE
// Spec: spec/domain/release.md

// Release is the root aggregate described in spec.md §3.
type Release struct {
	ID                     uuid.UUID
	TenantID               string
	Type                   ReleaseType
	Status                 ReleaseStatus
	Branch                 string
	BaseBranch             string
	ReleaseConfigID        uuid.UUID
	TargetReleaseDate      time.Time
	KickOffDate            time.Time
	KickOffReminderDate    time.Time
	HasManualBuildUpload   bool
	CreatedByAccountID     string
	ReleasePilotAccountID  string
	LastUpdatedByAccountID string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Clone returns a deep copy safe for callers to mutate without affecting
// the version held by a repository implementation.
func (r *Release) Clone() *Release {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// PlatformTargetMapping is the per-release platform/target/version triple
// described in spec.md §3. A release has at least one mapping.
type PlatformTargetMapping struct {
	ID                      uuid.UUID
	ReleaseID               uuid.UUID
	Platform                PlatformName
	Target                  TargetName
	Version                 string
	ProjectManagementRunID  string
	TestManagementRunID     string
}

// HasPlatform reports whether any mapping in the slice targets platform p.
func HasPlatform(mappings []PlatformTargetMapping, p PlatformName) bool {
	for _, m := range mappings {
		if m.Platform == p {
			return true
		}
	}
	return false
}

// PlatformsOf returns the distinct platforms named by the mappings, in
// the order first seen.
func PlatformsOf(mappings []PlatformTargetMapping) []PlatformName {
	seen := make(map[PlatformName]bool, len(mappings))
	out := make([]PlatformName, 0, len(mappings))
	for _, m := range mappings {
		if seen[m.Platform] {
			continue
		}
		seen[m.Platform] = true
		out = append(out, m.Platform)
	}
	return out
}
