// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Feature: STORE_MEMORY_ARTIFACTS
// Spec: spec/store/memory.md

// ArtifactStore implements service.ArtifactStore by holding uploaded
// build bytes in process memory, keyed by a synthetic path. It exists
// for tests and local runs; pkg/store/postgres writes uploads to files
// under a root directory instead.
type ArtifactStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{data: map[string][]byte{}}
}

func (a *ArtifactStore) Save(ctx context.Context, releaseID uuid.UUID, filename string, data []byte) (string, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := fmt.Sprintf("memory://%s/%s", releaseID, filename)
	a.data[path] = append([]byte(nil), data...)
	downloadURL := fmt.Sprintf("memory://download/%s/%s", releaseID, filename)
	return path, downloadURL, nil
}

// Get is a test helper returning the bytes saved under path.
func (a *ArtifactStore) Get(path string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.data[path]
	return b, ok
}
