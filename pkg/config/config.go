// Package config handles loading and managing SMROS configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for SMROS.
type Config struct {
	Gate    GateConfig    `yaml:"gate"`
	Scoring ScoringConfig `yaml:"scoring"`
	Probe   ProbeConfig   `yaml:"probe"`
}

// GateConfig controls gate state machine behavior.
type GateConfig struct {
	RemediationDays int `yaml:"remediation_days"` // Soft-KO grace period
	TTLHours        int `yaml:"ttl_hours"`        // Hard-evidence mirror TTL
}

// ScoringConfig controls scoring behavior.
type ScoringConfig struct {
	Weights      map[string]float64 `yaml:"weights"` // per-rule weight overrides
	FixlistSize  int                `yaml:"fixlist_size"`
	MinFollowers float64            `yaml:"min_followers"`
}

// ProbeConfig controls the network probes behind custom scorers.
type ProbeConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gate: GateConfig{
			RemediationDays: 7,
			TTLHours:        24,
		},
		Scoring: ScoringConfig{
			Weights:      map[string]float64{},
			FixlistSize:  5,
			MinFollowers: 1000,
		},
		Probe: ProbeConfig{
			TimeoutSeconds: 4,
		},
	}
}

// ProbeTimeout returns the probe bound as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	if c.Probe.TimeoutSeconds <= 0 {
		return 4 * time.Second
	}
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .smros/config.yaml in the given directory and
// its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".smros", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// DataDir returns the local data directory for the CLI tiers.
// Uses ~/.local/share/smros/ to avoid polluting the working directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "share", "smros")
}
