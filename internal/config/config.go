// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/assess"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/correlation"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/fusion"
)

// Config contains process configuration for one fusion run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RegistryPath locates the detector registry YAML.
	RegistryPath string `koanf:"registry_path"`

	// OutputDir is where correlation and score artifacts are written.
	OutputDir string `koanf:"output_dir"`

	// WorkerCount bounds parallel detector-file ingestion.
	WorkerCount int `koanf:"worker_count"`

	// ClusterThreshold is the |pearson_r| edge threshold for redundancy
	// clustering.
	ClusterThreshold float64 `koanf:"cluster_threshold"`

	// MinEntitiesForCorrelation gates statistical confidence: below it,
	// correlation is still computed but marked low-confidence.
	MinEntitiesForCorrelation int `koanf:"min_entities_for_correlation"`

	// SampleEntityCount caps the example entities embedded in the
	// correlation_matrix.json artifact.
	SampleEntityCount int `koanf:"sample_entity_count"`

	// MetricsAddr, when set (e.g. ":9090"), serves Prometheus metrics
	// for the duration of the run.
	MetricsAddr string `koanf:"metrics_addr"`

	// Tier weights and corroboration bonus for the fusion engine.
	Tier1Weight        float64 `koanf:"tier1_weight"`
	Tier2Weight        float64 `koanf:"tier2_weight"`
	Tier3Weight        float64 `koanf:"tier3_weight"`
	CorroborationBonus float64 `koanf:"corroboration_bonus"`

	// Assess carries the signal-to-confidence weighting; an explicit
	// calibration input, not a hardcoded constant.
	Assess assess.Weights `koanf:"assess"`

	// Signals carries the positive/negative keyword lists.
	Signals assess.SignalSet `koanf:"signals"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		RegistryPath:              "detector_registry.yaml",
		OutputDir:                 "artifacts",
		WorkerCount:               runtime.NumCPU(),
		ClusterThreshold:          correlation.DefaultClusterThreshold,
		MinEntitiesForCorrelation: correlation.DefaultMinEntities,
		SampleEntityCount:         10,
		Tier1Weight:               fusion.DefaultTier1Weight,
		Tier2Weight:               fusion.DefaultTier2Weight,
		Tier3Weight:               fusion.DefaultTier3Weight,
		CorroborationBonus:        fusion.DefaultCorroborationBonus,
		Assess:                    assess.DefaultWeights(),
		Signals:                   assess.DefaultSignalSet(),
	}
}
