// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Feature: CLI_GLOBAL_FLAGS
// Spec: spec/core/global-flags.md

package commands

import (
	"os"

	"github.com/spf13/cobra"

	"releaseorchestrator/pkg/config"
)

// ResolvedFlags contains the resolved values for the global flags,
// generalized from the teacher's precedence chain (flag > env var >
// built-in default) with the config-file-default tier dropped since
// releaseorchestrator.yml carries no per-environment flag defaults.
type ResolvedFlags struct {
	Config  string
	Verbose bool
	DryRun  bool
}

// ResolveFlags resolves the --config and --verbose global flags using:
// command-line flag, then environment variable, then built-in default.
// --dry-run is read from the command-line flag only.
func ResolveFlags(cmd *cobra.Command) *ResolvedFlags {
	flags := &ResolvedFlags{}

	configFlag, _ := cmd.Flags().GetString("config")
	flags.Config = resolveString(configFlag, os.Getenv("RELEASEORCHESTRATOR_CONFIG"), config.DefaultConfigPath())

	verboseFlag, _ := cmd.Flags().GetBool("verbose")
	flags.Verbose = verboseFlag || os.Getenv("RELEASEORCHESTRATOR_VERBOSE") == "true"

	dryRunFlag, _ := cmd.Flags().GetBool("dry-run")
	flags.DryRun = dryRunFlag

	return flags
}

func resolveString(flagVal, envVal, defaultVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if envVal != "" {
		return envVal
	}
	return defaultVal
}
