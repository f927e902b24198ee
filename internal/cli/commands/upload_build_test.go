// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Feature: CLI_UPLOAD_BUILD
// Spec: spec/commands/upload-build.md

func TestNewUploadBuildCommand_RequiresFiveArgs(t *testing.T) {
	cmd := NewUploadBuildCommand()
	cmd.SetArgs([]string{"release-id", "KICKOFF", "ios"})
	assert.Error(t, cmd.Execute())
}
