// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"releaseorchestrator/adapters/workflowpolling/composite"
	"releaseorchestrator/internal/core/executor"
	"releaseorchestrator/internal/core/lease"
	"releaseorchestrator/internal/core/notify"
	"releaseorchestrator/internal/core/orchestrator"
	"releaseorchestrator/internal/core/repo"
	"releaseorchestrator/internal/core/scheduler"
	"releaseorchestrator/internal/core/scheduler/cronsource"
	"releaseorchestrator/internal/core/scheduler/interval"
	"releaseorchestrator/internal/wiring"
	"releaseorchestrator/pkg/config"
	"releaseorchestrator/pkg/logging"
	storepostgres "releaseorchestrator/pkg/store/postgres"
)

// Feature: CLI_SERVE
// Spec: spec/commands/serve.md

// NewServeCommand returns the `releasectl serve` command: it loads
// config, opens the Postgres store, wires the configured providers, and
// runs the Global Scheduler (spec.md §4.7) and the polling Dispatcher
// (spec.md §4.9) until interrupted.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the release orchestrator scheduler loop",
		Long:  "Loads releaseorchestrator.yml, wires the configured providers, and drives the Global Scheduler until interrupted.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := ResolveFlags(cmd)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		if err == config.ErrConfigNotFound {
			return fmt.Errorf("releaseorchestrator config not found at %s", flags.Config)
		}
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(flags.Verbose)

	store, err := storepostgres.Open(cmd.Context(), cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	providers, err := wiring.BuildProviders(cfg.Providers)
	if err != nil {
		return fmt.Errorf("wiring providers: %w", err)
	}

	repoStore := store.AsRepoStore()

	owner := instanceIdentity()
	leaseMgr := lease.New(repoStore.CronJobs, owner, time.Duration(cfg.Lease.TTLSeconds)*time.Second)

	exec := &executor.Executor{
		Store:     repoStore,
		Providers: providers,
		Breakers:  executor.NewBreakerSet(),
		Logger:    logger.WithFields(logging.NewField("component", "executor")),
	}

	orch := &orchestrator.Orchestrator{
		Store:    repoStore,
		Executor: exec,
		Logger:   logger.WithFields(logging.NewField("component", "orchestrator")),
	}

	tick, err := buildTickSource(cfg.Scheduler)
	if err != nil {
		return err
	}

	sched := &scheduler.Scheduler{
		Store:         repoStore,
		Orchestrator:  orch,
		Lease:         leaseMgr,
		Logger:        logger.WithFields(logging.NewField("component", "scheduler")),
		Tick:          tick,
		Concurrency:   cfg.Scheduler.Concurrency,
		ShutdownGrace: time.Duration(cfg.Scheduler.ShutdownGraceSeconds) * time.Second,
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher := &notify.Dispatcher{
		Store:   repoStore,
		Polling: composite.New(owner, providers.CICD, providers.PMTicket, providers.TestMgmt),
		Logger:  logger.WithFields(logging.NewField("component", "notify")),
	}
	go dispatcher.Run(ctx, runningReleaseIDs(repoStore), time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second)

	logger.Info("release orchestrator starting", logging.NewField("owner", owner))
	sched.Run(ctx)
	sched.Stop()
	logger.Info("release orchestrator stopped")
	return nil
}

func buildTickSource(cfg config.SchedulerConfig) (scheduler.TickSource, error) {
	switch cfg.TickSource {
	case "cron":
		return cronsource.New(cfg.CronExpression), nil
	case "interval", "":
		return interval.New(time.Duration(cfg.IntervalSeconds) * time.Second), nil
	default:
		return nil, fmt.Errorf("unknown scheduler.tickSource %q", cfg.TickSource)
	}
}

func runningReleaseIDs(store *repo.Store) func(ctx context.Context) ([]uuid.UUID, error) {
	return func(ctx context.Context) ([]uuid.UUID, error) {
		candidates, err := store.CronJobs.FindRunningCandidates(ctx, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ReleaseID)
		}
		return ids, nil
	}
}

func instanceIdentity() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func artifactsRoot() string {
	if v := os.Getenv("RELEASEORCHESTRATOR_ARTIFACTS_ROOT"); v != "" {
		return v
	}
	return "./artifacts"
}

func artifactsDownloadBase() string {
	if v := os.Getenv("RELEASEORCHESTRATOR_ARTIFACTS_DOWNLOAD_BASE"); v != "" {
		return v
	}
	return "/artifacts"
}
