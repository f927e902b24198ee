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

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

// Feature: CLI_GLOBAL_FLAGS
// Spec: spec/core/global-flags.md

func newFlagsTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringP("config", "c", "", "")
	cmd.Flags().Bool("dry-run", false, "")
	cmd.Flags().BoolP("verbose", "v", false, "")
	return cmd
}

func TestResolveFlags_Defaults(t *testing.T) {
	cmd := newFlagsTestCommand()
	flags := ResolveFlags(cmd)
	assert.Equal(t, "releaseorchestrator.yml", flags.Config)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.DryRun)
}

func TestResolveFlags_FlagOverridesDefault(t *testing.T) {
	cmd := newFlagsTestCommand()
	require := assert.New(t)
	require.NoError(cmd.Flags().Set("config", "custom.yml"))
	require.NoError(cmd.Flags().Set("verbose", "true"))
	require.NoError(cmd.Flags().Set("dry-run", "true"))

	flags := ResolveFlags(cmd)
	require.Equal("custom.yml", flags.Config)
	require.True(flags.Verbose)
	require.True(flags.DryRun)
}

func TestResolveFlags_EnvVarOverridesDefault(t *testing.T) {
	t.Setenv("RELEASEORCHESTRATOR_CONFIG", "env.yml")
	t.Setenv("RELEASEORCHESTRATOR_VERBOSE", "true")

	cmd := newFlagsTestCommand()
	flags := ResolveFlags(cmd)
	assert.Equal(t, "env.yml", flags.Config)
	assert.True(t, flags.Verbose)
}
