// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package cli wires together the releasectl root Cobra command and
// global CLI options.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"releaseorchestrator/internal/cli/commands"
)

// NewRootCommand constructs the releasectl root Cobra command.
//
// Feature: ARCH_OVERVIEW
// Spec: spec/overview.md
func NewRootCommand() *cobra.Command {
	version := os.Getenv("RELEASEORCHESTRATOR_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "releasectl",
		Short:         "releasectl – release orchestrator CLI",
		Long:          "releasectl drives and inspects the three-stage release state machine (Kickoff, Regression, PreRelease).",
		SilenceUsage:  true, // don't dump usage on user errors
		SilenceErrors: true, // centralize error printing in main()
	}

	// Global flags - registered in lexicographic order for deterministic help output
	cmd.PersistentFlags().StringP("config", "c", "", "path to releaseorchestrator.yml")
	cmd.PersistentFlags().Bool("dry-run", false, "show actions without executing")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of releasectl",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "releasectl version %s\n", version)
		},
	})

	// Subcommands - keep registrations in lexicographic order by .Use
	cmd.AddCommand(commands.NewMigrateCommand())
	cmd.AddCommand(commands.NewReleaseCommand())
	cmd.AddCommand(commands.NewRetryTaskCommand())
	cmd.AddCommand(commands.NewServeCommand())
	cmd.AddCommand(commands.NewUploadBuildCommand())

	return cmd
}
