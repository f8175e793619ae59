package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if NEXUS_CONFIG is set
//  3. env (prefix NEXUS_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("NEXUS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: NEXUS_OUTPUT_DIR, NEXUS_WORKER_COUNT, ...
	// Map env keys like NEXUS_WORKER_COUNT -> worker_count (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("NEXUS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "nexus_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RegistryPath == "" {
		return fmt.Errorf("%w: registry_path must not be empty", ErrInvalidConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	}
	if c.ClusterThreshold <= 0 || c.ClusterThreshold > 1 {
		return fmt.Errorf("%w: cluster_threshold must be in (0,1]", ErrInvalidConfig)
	}
	if c.MinEntitiesForCorrelation < 2 {
		return fmt.Errorf("%w: min_entities_for_correlation must be at least 2", ErrInvalidConfig)
	}
	if c.Tier1Weight <= 0 || c.Tier2Weight <= 0 || c.Tier3Weight <= 0 {
		return fmt.Errorf("%w: tier weights must be positive", ErrInvalidConfig)
	}
	if c.CorroborationBonus < 1 {
		return fmt.Errorf("%w: corroboration_bonus must be at least 1", ErrInvalidConfig)
	}
	return nil
}
