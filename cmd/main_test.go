package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	service "github.com/DailyForkCast/osint-foresight-sub007/internal/app"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/config"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/logger"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/metrics"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("NEXUS_REGISTRY_PATH", "registry.yaml")
			_ = os.Setenv("NEXUS_WORKER_COUNT", "4")
			_ = os.Setenv("NEXUS_CLUSTER_THRESHOLD", "0.8")
			defer func() {
				_ = os.Unsetenv("NEXUS_REGISTRY_PATH")
				_ = os.Unsetenv("NEXUS_WORKER_COUNT")
				_ = os.Unsetenv("NEXUS_CLUSTER_THRESHOLD")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.RegistryPath, convey.ShouldEqual, "registry.yaml")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.ClusterThreshold, convey.ShouldEqual, 0.8)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := service.New()
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.Store(), convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable from a config", func() {
				cfg := config.New()
				svc := service.New(service.FromConfig(cfg)...)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing the metrics listener", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			convey.Convey("Then it should start and shut down cleanly", func() {
				srv := startMetricsServer(ctx, "127.0.0.1:0")
				convey.So(srv, convey.ShouldNotBeNil)
				convey.So(func() { shutdownMetricsServer(ctx, srv) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRunWithoutRegistry(t *testing.T) {
	convey.Convey("Given a working directory with no registry", t, func() {
		dir := t.TempDir()
		_ = os.Setenv("NEXUS_REGISTRY_PATH", dir+"/detector_registry.yaml")
		_ = os.Setenv("NEXUS_OUTPUT_DIR", dir+"/artifacts")
		defer func() {
			_ = os.Unsetenv("NEXUS_REGISTRY_PATH")
			_ = os.Unsetenv("NEXUS_OUTPUT_DIR")
		}()

		convey.Convey("When running the binary logic", func() {
			code := run()

			convey.Convey("Then it exits zero after writing the example", func() {
				convey.So(code, convey.ShouldEqual, 0)
				_, err := os.Stat(dir + "/detector_registry.yaml")
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}
