package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then sensible defaults are set", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.RegistryPath, ShouldEqual, "detector_registry.yaml")
			So(cfg.OutputDir, ShouldEqual, "artifacts")
			So(cfg.WorkerCount, ShouldBeGreaterThanOrEqualTo, 1)
			So(cfg.ClusterThreshold, ShouldEqual, 0.7)
			So(cfg.MinEntitiesForCorrelation, ShouldEqual, 10)
			So(cfg.Tier1Weight, ShouldEqual, 0.25)
			So(cfg.Tier2Weight, ShouldEqual, 0.15)
			So(cfg.Tier3Weight, ShouldEqual, 0.05)
			So(cfg.CorroborationBonus, ShouldEqual, 1.1)
			So(cfg.Signals.CountryCodes, ShouldNotBeEmpty)
			So(cfg.Assess.Cap, ShouldBeGreaterThan, 0)
		})
	})
}

func TestLoadFromEnv(t *testing.T) {
	Convey("Given NEXUS_-prefixed environment overrides", t, func() {
		_ = os.Setenv("NEXUS_OUTPUT_DIR", "/tmp/run-artifacts")
		_ = os.Setenv("NEXUS_WORKER_COUNT", "4")
		_ = os.Setenv("NEXUS_CLUSTER_THRESHOLD", "0.8")
		defer func() {
			_ = os.Unsetenv("NEXUS_OUTPUT_DIR")
			_ = os.Unsetenv("NEXUS_WORKER_COUNT")
			_ = os.Unsetenv("NEXUS_CLUSTER_THRESHOLD")
		}()

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)

			Convey("Then env values take precedence over defaults", func() {
				So(cfg.OutputDir, ShouldEqual, "/tmp/run-artifacts")
				So(cfg.WorkerCount, ShouldEqual, 4)
				So(cfg.ClusterThreshold, ShouldEqual, 0.8)
				// untouched defaults survive
				So(cfg.MinEntitiesForCorrelation, ShouldEqual, 10)
			})
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nexus.yaml")
		body := []byte(`
log_level: debug
cluster_threshold: 0.75
signals:
  country_codes: ["cn", "prc"]
assess:
  cap: 0.9
`)
		So(os.WriteFile(path, body, 0o600), ShouldBeNil)
		_ = os.Setenv("NEXUS_CONFIG", path)
		defer func() { _ = os.Unsetenv("NEXUS_CONFIG") }()

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the file layers over defaults", func() {
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.ClusterThreshold, ShouldEqual, 0.75)
				So(cfg.Signals.CountryCodes, ShouldResemble, []string{"cn", "prc"})
				So(cfg.Assess.Cap, ShouldEqual, 0.9)
			})
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given invalid overrides", t, func() {
		cases := map[string]string{
			"NEXUS_WORKER_COUNT":                 "0",
			"NEXUS_CLUSTER_THRESHOLD":            "1.5",
			"NEXUS_MIN_ENTITIES_FOR_CORRELATION": "1",
			"NEXUS_CORROBORATION_BONUS":          "0.5",
		}

		for key, value := range cases {
			Convey("When "+key+" is "+value, func() {
				_ = os.Setenv(key, value)
				defer func() { _ = os.Unsetenv(key) }()

				_, err := config.Load(context.Background())

				Convey("Then loading fails with ErrInvalidConfig", func() {
					So(err, ShouldWrap, config.ErrInvalidConfig)
				})
			})
		}
	})

	Convey("Given a missing config file path", t, func() {
		_ = os.Setenv("NEXUS_CONFIG", "/does/not/exist.yaml")
		defer func() { _ = os.Unsetenv("NEXUS_CONFIG") }()

		Convey("When loading", func() {
			_, err := config.Load(context.Background())

			Convey("Then loading fails with ErrLoadConfig", func() {
				So(err, ShouldWrap, config.ErrLoadConfig)
			})
		})
	})
}
