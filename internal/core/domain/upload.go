// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Feature: CORE_DOMAIN_UPLOAD
// Spec: spec/domain/upload.md

// ReleaseUpload is a staged manual build artifact record (spec.md §3).
type ReleaseUpload struct {
	ID           uuid.UUID
	ReleaseID    uuid.UUID
	Stage        TaskStage
	Platform     PlatformName
	ArtifactPath string
	DownloadURL  string
	UploadedAt   time.Time
}

// AllowedUploadExtensions is the closed set named in spec.md §4.8.
var AllowedUploadExtensions = map[string]bool{
	".ipa": true,
	".apk": true,
	".aab": true,
}

// ValidUploadExtension reports whether filename carries an allowed
// manual-build extension.
func ValidUploadExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return AllowedUploadExtensions[ext]
}

// UploadReadiness is the result shape named in spec.md §4.8 for
// uploadManualBuild: "{uploaded platforms, missing platforms,
// allPlatformsReady}".
type UploadReadiness struct {
	UploadedPlatforms   []PlatformName
	MissingPlatforms    []PlatformName
	AllPlatformsReady   bool
}

// ComputeReadiness compares the set of platforms a release needs against
// the platforms already uploaded for (releaseID, stage).
func ComputeReadiness(required []PlatformName, uploaded []ReleaseUpload, stage TaskStage) UploadReadiness {
	have := make(map[PlatformName]bool, len(uploaded))
	for _, u := range uploaded {
		if u.Stage == stage {
			have[u.Platform] = true
		}
	}

	result := UploadReadiness{AllPlatformsReady: true}
	for _, p := range required {
		if have[p] {
			result.UploadedPlatforms = append(result.UploadedPlatforms, p)
		} else {
			result.MissingPlatforms = append(result.MissingPlatforms, p)
			result.AllPlatformsReady = false
		}
	}
	return result
}
