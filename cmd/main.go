// Command fusiond runs one evidence fusion pass: it loads the detector
// registry, ingests every detector's NDJSON stream, assesses record
// quality, correlates detectors, fuses per-entity confidence scores and
// writes the run artifacts.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/DailyForkCast/osint-foresight-sub007/internal/app"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/config"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/logger"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second

	topScoresShown = 10
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional metrics listener for the duration of the run.
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = startMetricsServer(ctx, cfg.MetricsAddr)
		defer shutdownMetricsServer(ctx, metricsSrv)
	}

	svc := service.New(append(service.FromConfig(cfg), service.WithLogger(log))...)

	summary, err := svc.Run(ctx)
	switch {
	case errors.Is(err, service.ErrExampleRegistryWritten):
		log.Info(ctx, "wrote an example detector registry; fill it in and re-run",
			logger.String("path", cfg.RegistryPath))
		return 0
	case err != nil:
		log.Error(ctx, "fusion run failed", logger.Error(err))
		return 1
	}

	logTopScores(ctx, svc)
	log.Info(ctx, "artifacts written", logger.String("dir", summary.ArtifactDir))
	return 0
}

// logTopScores logs the highest fused scores for quick review.
func logTopScores(ctx context.Context, svc *service.Service) {
	log := logger.Get()
	top, err := svc.Store().TopN(ctx, topScoresShown)
	if err != nil {
		log.Warn(ctx, "cannot rank fused scores", logger.Error(err))
		return
	}
	for i, score := range top {
		log.Info(ctx, "fused score",
			logger.Int("rank", i+1),
			logger.String("entity", score.EntityID),
			logger.String("score", score.Display),
			logger.Int("tier", int(score.Tier)),
		)
	}
}

func startMetricsServer(ctx context.Context, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		logger.Get().Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Warn(ctx, "metrics server failed", logger.Error(err))
		}
	}()
	return srv
}

func shutdownMetricsServer(ctx context.Context, srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Warn(ctx, "metrics server shutdown failed", logger.Error(err))
	}
}
