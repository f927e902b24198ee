// SPDX-License-Identifier: AGPL-3.0-or-later

/*

Stagecraft - Stagecraft is a Go-based CLI that orchestrates local-first development and scalable single-host to multi-host deployments for multi-service applications powered by Docker Compose.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package wiring resolves a loaded pkg/config.Config into a concrete
// executor.Providers bundle: one adapter per capability, built from its
// provider-specific settings block and registered into that capability's
// pkg/providers/*.Registry, matching the lookup path documented on
// executor.Providers ("callers ... fetch instances from the
// pkg/providers/*.Registry").
package wiring

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"releaseorchestrator/adapters/cicd/webhook"
	"releaseorchestrator/adapters/messaging/slack"
	"releaseorchestrator/adapters/pmticket/restapi"
	scmgithub "releaseorchestrator/adapters/scm/github"
	"releaseorchestrator/adapters/scm/localgit"
	testmgmtrestapi "releaseorchestrator/adapters/testmgmt/restapi"
	"releaseorchestrator/internal/core/executor"
	"releaseorchestrator/pkg/config"
	"releaseorchestrator/pkg/providers/cicd"
	"releaseorchestrator/pkg/providers/messaging"
	"releaseorchestrator/pkg/providers/pmticket"
	"releaseorchestrator/pkg/providers/scm"
	"releaseorchestrator/pkg/providers/testmgmt"
)

// Feature: CORE_PROVIDER_WIRING
// Spec: spec/core/provider-wiring.md

// decodeConfig round-trips a map[string]any (as produced by YAML
// unmarshaling into ProviderSelection.Providers) into a typed adapter
// config struct, mirroring the teacher's generic-backend parseConfig
// helper.
func decodeConfig(raw any, out any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshaling provider config: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshaling provider config: %w", err)
	}
	return nil
}

// BuildProviders constructs and registers one adapter per capability
// named in cfg.Providers, returning the resolved executor.Providers
// bundle. Registration happens once per provider ID; calling
// BuildProviders twice for the same config will panic on the registry's
// duplicate-ID check, so callers build it once at process startup.
func BuildProviders(cfg config.ProvidersConfig) (executor.Providers, error) {
	var providers executor.Providers
	var err error

	if providers.SCM, err = buildSCM(cfg.SCM); err != nil {
		return executor.Providers{}, fmt.Errorf("wiring scm provider: %w", err)
	}
	if providers.CICD, err = buildCICD(cfg.CICD); err != nil {
		return executor.Providers{}, fmt.Errorf("wiring cicd provider: %w", err)
	}
	if providers.PMTicket, err = buildPMTicket(cfg.PMTicket); err != nil {
		return executor.Providers{}, fmt.Errorf("wiring pmTicket provider: %w", err)
	}
	if providers.TestMgmt, err = buildTestMgmt(cfg.TestManagement); err != nil {
		return executor.Providers{}, fmt.Errorf("wiring testManagement provider: %w", err)
	}
	if providers.Messaging, err = buildMessaging(cfg.Messaging); err != nil {
		return executor.Providers{}, fmt.Errorf("wiring messaging provider: %w", err)
	}
	return providers, nil
}

func buildSCM(sel config.ProviderSelection) (scm.SCM, error) {
	raw, err := sel.GetProviderConfig()
	if err != nil {
		return nil, err
	}

	var adapter scm.SCM
	switch sel.Provider {
	case "github":
		var c scmgithub.Config
		if err := decodeConfig(raw, &c); err != nil {
			return nil, err
		}
		a, err := scmgithub.New(sel.Provider, c)
		if err != nil {
			return nil, err
		}
		adapter = a
	case "localgit":
		var c struct {
			RepoPath string `yaml:"repoPath"`
		}
		if err := decodeConfig(raw, &c); err != nil {
			return nil, err
		}
		adapter = localgit.New(sel.Provider, c.RepoPath)
	default:
		return nil, fmt.Errorf("unwired scm provider %q", sel.Provider)
	}

	scm.Register(adapter)
	return adapter, nil
}

func buildCICD(sel config.ProviderSelection) (cicd.CICDWorkflow, error) {
	raw, err := sel.GetProviderConfig()
	if err != nil {
		return nil, err
	}

	var adapter cicd.CICDWorkflow
	switch sel.Provider {
	case "webhook":
		var c webhook.Config
		if err := decodeConfig(raw, &c); err != nil {
			return nil, err
		}
		adapter = webhook.New(sel.Provider, c)
	default:
		return nil, fmt.Errorf("unwired cicd provider %q", sel.Provider)
	}

	cicd.Register(adapter)
	return adapter, nil
}

func buildPMTicket(sel config.ProviderSelection) (pmticket.PMTicket, error) {
	raw, err := sel.GetProviderConfig()
	if err != nil {
		return nil, err
	}

	var adapter pmticket.PMTicket
	switch sel.Provider {
	case "restapi":
		var c restapi.Config
		if err := decodeConfig(raw, &c); err != nil {
			return nil, err
		}
		adapter = restapi.New(sel.Provider, c)
	default:
		return nil, fmt.Errorf("unwired pmTicket provider %q", sel.Provider)
	}

	pmticket.Register(adapter)
	return adapter, nil
}

func buildTestMgmt(sel config.ProviderSelection) (testmgmt.TestManagementRun, error) {
	raw, err := sel.GetProviderConfig()
	if err != nil {
		return nil, err
	}

	var adapter testmgmt.TestManagementRun
	switch sel.Provider {
	case "restapi":
		var c testmgmtrestapi.Config
		if err := decodeConfig(raw, &c); err != nil {
			return nil, err
		}
		adapter = testmgmtrestapi.New(sel.Provider, c)
	default:
		return nil, fmt.Errorf("unwired testManagement provider %q", sel.Provider)
	}

	testmgmt.Register(adapter)
	return adapter, nil
}

func buildMessaging(sel config.ProviderSelection) (messaging.Messaging, error) {
	raw, err := sel.GetProviderConfig()
	if err != nil {
		return nil, err
	}

	var adapter messaging.Messaging
	switch sel.Provider {
	case "slack":
		var c struct {
			Token string `yaml:"token"`
		}
		if err := decodeConfig(raw, &c); err != nil {
			return nil, err
		}
		adapter = slack.New(sel.Provider, c.Token)
	default:
		return nil, fmt.Errorf("unwired messaging provider %q", sel.Provider)
	}

	messaging.Register(adapter)
	return adapter, nil
}
