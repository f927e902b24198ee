// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config defines the release orchestrator's configuration
// schema and helpers for loading and validating config files,
// generalized from the teacher's pkg/config.Load/validate pattern
// (provider selection validated against a closed set of known names, map-typed
// per-provider settings) into the orchestrator's DB/scheduler/lease/
// provider settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feature: CORE_CONFIG_PROVIDER_NAMES
// Spec: spec/core/config.md

// Known adapter names per capability set. Unlike the teacher's
// registry-backed provider lookup, this binary wires exactly one
// concrete, statically-configured adapter instance per capability into
// the Task Executor's Providers struct (spec.md §4.4) rather than
// selecting among several registered instances at runtime, so
// validation checks against this closed set instead of a live registry.
var (
	knownSCMProviders       = map[string]bool{"github": true, "localgit": true}
	knownCICDProviders      = map[string]bool{"webhook": true}
	knownPMTicketProviders  = map[string]bool{"restapi": true}
	knownTestMgmtProviders  = map[string]bool{"restapi": true}
	knownMessagingProviders = map[string]bool{"slack": true}
)

// Feature: CORE_CONFIG
// Spec: spec/core/config.md

// ErrConfigNotFound is returned when the config file does not exist at the given path.
var ErrConfigNotFound = errors.New("releaseorchestrator config not found")

// Config is the top-level configuration.
type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Lease     LeaseConfig     `yaml:"lease"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ProjectConfig describes project-level settings.
type ProjectConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig describes the global periodic scheduler named in
// spec.md §4.7: an interval ticker or a cron expression, bounded
// concurrency, and graceful-shutdown behavior.
type SchedulerConfig struct {
	TickSource           string `yaml:"tickSource"` // "interval" or "cron"
	IntervalSeconds      int    `yaml:"intervalSeconds,omitempty"`
	CronExpression       string `yaml:"cronExpression,omitempty"`
	Concurrency          int    `yaml:"concurrency"`
	ShutdownGraceSeconds int    `yaml:"shutdownGraceSeconds"`
}

// LeaseConfig describes the per-CronJob advisory lease.
type LeaseConfig struct {
	TTLSeconds int `yaml:"ttlSeconds"`
}

// ProviderSelection names the active provider for one capability set and
// carries its provider-specific settings, mirroring the teacher's
// BackendConfig/FrontendConfig shape.
type ProviderSelection struct {
	Provider  string         `yaml:"provider"`
	Providers map[string]any `yaml:"providers"`
}

// GetProviderConfig returns the settings block for the selected provider.
func (s ProviderSelection) GetProviderConfig() (any, error) {
	if s.Provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if s.Providers == nil {
		return nil, fmt.Errorf("providers is required")
	}
	cfg, ok := s.Providers[s.Provider]
	if !ok {
		return nil, fmt.Errorf("providers.%s is missing; provider-specific config is required", s.Provider)
	}
	return cfg, nil
}

// ProvidersConfig selects the active adapter for each capability set
// consumed by the Task Executor (spec.md §4.4, §6.4).
type ProvidersConfig struct {
	SCM            ProviderSelection `yaml:"scm"`
	CICD           ProviderSelection `yaml:"cicd"`
	PMTicket       ProviderSelection `yaml:"pmTicket"`
	TestManagement ProviderSelection `yaml:"testManagement"`
	Messaging      ProviderSelection `yaml:"messaging"`
}

// DefaultConfigPath returns the default config path for the current
// working directory.
func DefaultConfigPath() string {
	return "releaseorchestrator.yml"
}

// Exists reports whether a config file exists at the given path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the config from the given path.
//
// It returns ErrConfigNotFound if the file does not exist.
func Load(path string) (*Config, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("checking config existence: %w", err)
	}
	if !exists {
		return nil, ErrConfigNotFound
	}

	// nolint:gosec // G304: reading config file from user-specified path is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with the scheduler and lease defaults named
// in spec.md §4.3 and §4.7.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			TickSource:           "interval",
			IntervalSeconds:      60,
			Concurrency:          8,
			ShutdownGraceSeconds: 30,
		},
		Lease: LeaseConfig{TTLSeconds: 300},
	}
}

func validate(cfg *Config) error {
	if cfg.Project.Name == "" {
		return errors.New("config: project.name must be non-empty")
	}
	if cfg.Database.DSN == "" {
		return errors.New("config: database.dsn must be non-empty")
	}

	if err := validateScheduler(cfg.Scheduler); err != nil {
		return err
	}
	if cfg.Lease.TTLSeconds <= 0 {
		return errors.New("config: lease.ttlSeconds must be positive")
	}

	if err := validateSelection("scm", cfg.Providers.SCM, knownSCMProviders); err != nil {
		return err
	}
	if err := validateSelection("cicd", cfg.Providers.CICD, knownCICDProviders); err != nil {
		return err
	}
	if err := validateSelection("pmTicket", cfg.Providers.PMTicket, knownPMTicketProviders); err != nil {
		return err
	}
	if err := validateSelection("testManagement", cfg.Providers.TestManagement, knownTestMgmtProviders); err != nil {
		return err
	}
	if err := validateSelection("messaging", cfg.Providers.Messaging, knownMessagingProviders); err != nil {
		return err
	}
	return nil
}

func validateScheduler(s SchedulerConfig) error {
	switch s.TickSource {
	case "interval":
		if s.IntervalSeconds <= 0 {
			return errors.New("config: scheduler.intervalSeconds must be positive when tickSource is interval")
		}
	case "cron":
		if s.CronExpression == "" {
			return errors.New("config: scheduler.cronExpression must be non-empty when tickSource is cron")
		}
	default:
		return fmt.Errorf("config: scheduler.tickSource must be one of: interval, cron (got %q)", s.TickSource)
	}
	if s.Concurrency <= 0 {
		return errors.New("config: scheduler.concurrency must be positive")
	}
	if s.ShutdownGraceSeconds <= 0 {
		return errors.New("config: scheduler.shutdownGraceSeconds must be positive")
	}
	return nil
}

func validateSelection(name string, s ProviderSelection, known map[string]bool) error {
	if s.Provider == "" {
		return fmt.Errorf("config: providers.%s.provider is required", name)
	}
	if !known[s.Provider] {
		names := make([]string, 0, len(known))
		for n := range known {
			names = append(names, n)
		}
		return fmt.Errorf("config: unknown %s provider %q; available: %v", name, s.Provider, names)
	}
	if s.Providers == nil {
		return fmt.Errorf("config: providers.%s.providers is required", name)
	}
	if _, ok := s.Providers[s.Provider]; !ok {
		return fmt.Errorf("config: providers.%s.providers.%s is missing; provider-specific config is required", name, s.Provider)
	}
	return nil
}
