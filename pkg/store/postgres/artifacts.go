// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Feature: STORE_POSTGRES_ARTIFACTS
// Spec: spec/store/postgres.md

// ArtifactStore persists uploaded build bytes under a root directory on
// local or mounted network storage, keyed by release ID. It implements
// service.ArtifactStore.
type ArtifactStore struct {
	Root        string
	DownloadURLBase string
}

func NewArtifactStore(root, downloadURLBase string) *ArtifactStore {
	return &ArtifactStore{Root: root, DownloadURLBase: downloadURLBase}
}

func (a *ArtifactStore) Save(ctx context.Context, releaseID uuid.UUID, filename string, data []byte) (string, string, error) {
	dir := filepath.Join(a.Root, releaseID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating artifact directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("writing artifact: %w", err)
	}

	downloadURL := fmt.Sprintf("%s/%s/%s", a.DownloadURLBase, releaseID, filepath.Base(filename))
	return path, downloadURL, nil
}
