package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smros/smros/internal/assessment"
	"github.com/smros/smros/internal/store"
	"github.com/smros/smros/pkg/config"
	"github.com/smros/smros/pkg/probe"
	"github.com/smros/smros/pkg/rules"
	"github.com/smros/smros/pkg/scoring"
)

// buildService wires the CLI-local service: config discovery, weight
// overrides, live probes, and a session+durable tier pair rooted in the
// user data directory.
func buildService(configPath, dataDir string) (*assessment.Service, error) {
	if configPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			configPath = config.FindConfigFile(cwd)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	registry := rules.Default()
	registry, err = registry.ApplyWeightOverrides(cfg.Scoring.Weights)
	if err != nil {
		return nil, fmt.Errorf("apply weight overrides: %w", err)
	}

	// No image classifier is wired in the CLI; image-pair criteria score
	// zero until evidence goes through the hosted service.
	engine := scoring.NewEngine(registry, &scoring.CustomScorers{
		Probe:        probe.NewHTTPProbe(),
		ProbeTimeout: cfg.ProbeTimeout(),
		MinFollowers: cfg.Scoring.MinFollowers,
	})

	dir := firstNonEmpty(dataDir, config.DataDir())
	durable, err := store.OpenSQLiteTier(filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("open durable tier: %w", err)
	}
	adapter := store.NewAdapter(store.NewMemoryTier(), durable)

	return assessment.NewService(registry, engine, adapter, probe.NewDNSResolver(), cfg, nil, nil), nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
