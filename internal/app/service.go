// Package service orchestrates one evidence fusion run: registry load,
// parallel stream ingestion, per-record quality assessment, matrix build,
// correlation analysis, cluster-aware confidence fusion and artifact
// rendering.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/adapters/artifacts"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/adapters/ingest"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/adapters/registry"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/adapters/scorestore"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/config"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/assess"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/correlation"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/fusion"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/matrix"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/logger"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultSampleEntityCount = 10
)

// RunSummary reports what a completed run did.
type RunSummary struct {
	RunID           string                        `json:"run_id"`
	Detectors       int                           `json:"detectors"`
	Entities        int                           `json:"entities"`
	RecordsAssessed int                           `json:"records_assessed"`
	FlagCounts      map[model.DataQualityFlag]int `json:"flag_counts"`
	PairsComputed   int                           `json:"pairs_computed"`
	PairsOmitted    int                           `json:"pairs_omitted"`
	Clusters        int                           `json:"clusters"`
	ScoresFused     int                           `json:"scores_fused"`
	LowConfidence   bool                          `json:"low_confidence"`
	ArtifactDir     string                        `json:"artifact_dir"`
	LoadReports     map[string]ingest.LoadReport  `json:"load_reports"`
	Duration        time.Duration                 `json:"duration"`
}

// Service runs the fusion pipeline.
type Service struct {
	registryPath      string
	outputDir         string
	workerCount       int
	sampleEntityCount int

	assessor *assess.Assessor
	analyzer *correlation.Analyzer
	engine   *fusion.Engine
	store    scorestore.Store

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithRegistryPath sets the detector registry location.
func WithRegistryPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.registryPath = path
		}
	}
}

// WithOutputDir sets the artifact directory.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithWorkerCount bounds parallel stream ingestion.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSampleEntityCount caps the example entities embedded in artifacts.
func WithSampleEntityCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.sampleEntityCount = count
		}
	}
}

// WithAssessor sets the field/quality assessor.
func WithAssessor(a *assess.Assessor) Option {
	return func(s *Service) {
		if a != nil {
			s.assessor = a
		}
	}
}

// WithAnalyzer sets the correlation analyzer.
func WithAnalyzer(a *correlation.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithFusionEngine sets the confidence fusion engine.
func WithFusionEngine(e *fusion.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithStore sets the fused score store.
func WithStore(store scorestore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// FromConfig translates a loaded Config into service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithRegistryPath(cfg.RegistryPath),
		WithOutputDir(cfg.OutputDir),
		WithWorkerCount(cfg.WorkerCount),
		WithSampleEntityCount(cfg.SampleEntityCount),
		WithAssessor(assess.New(
			assess.WithWeights(cfg.Assess),
			assess.WithSignalSet(cfg.Signals),
		)),
		WithAnalyzer(correlation.New(
			correlation.WithClusterThreshold(cfg.ClusterThreshold),
			correlation.WithMinEntities(cfg.MinEntitiesForCorrelation),
		)),
		WithFusionEngine(fusion.New(
			fusion.WithTierWeights(cfg.Tier1Weight, cfg.Tier2Weight, cfg.Tier3Weight),
			fusion.WithCorroborationBonus(cfg.CorroborationBonus),
		)),
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		registryPath:      "detector_registry.yaml",
		outputDir:         "artifacts",
		workerCount:       runtime.NumCPU(),
		sampleEntityCount: defaultSampleEntityCount,
		assessor:          assess.New(),
		analyzer:          correlation.New(),
		engine:            fusion.New(),
		store:             scorestore.NewMemStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Store exposes the fused score store for post-run queries.
func (s *Service) Store() scorestore.Store {
	return s.store
}

// Run executes one fusion run end to end.
//
// A missing registry is not a crash: an example is written to the
// configured path and the run ends with ErrExampleRegistryWritten so the
// caller can exit cleanly. Fewer than two loadable detectors is a hard
// error; correlation over one column is meaningless.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()
	summary := &RunSummary{
		RunID:       uuid.New().String(),
		ArtifactDir: s.outputDir,
		FlagCounts:  make(map[model.DataQualityFlag]int),
		LoadReports: make(map[string]ingest.LoadReport),
	}
	s.logger.Info(ctx, "starting fusion run",
		logger.String("run_id", summary.RunID),
		logger.String("registry", s.registryPath),
		logger.Int("workers", s.workerCount),
	)

	detectors, err := registry.Load(ctx, s.registryPath)
	if errors.Is(err, registry.ErrRegistryNotFound) {
		if writeErr := registry.WriteExample(s.registryPath); writeErr != nil {
			return nil, fmt.Errorf("registry missing and example not writable: %w", writeErr)
		}
		s.logger.Info(ctx, "no registry found; example written",
			logger.String("path", s.registryPath),
		)
		return nil, fmt.Errorf("%w: %s", ErrExampleRegistryWritten, s.registryPath)
	}
	if err != nil {
		return nil, err
	}
	if len(detectors) < 2 {
		return nil, fmt.Errorf("%w: %d registered", correlation.ErrTooFewDetectors, len(detectors))
	}

	builder := matrix.NewBuilder()
	keyFields := make(map[string][]string, len(detectors))
	tasks := make([]ingest.Task, 0, len(detectors))
	for _, det := range detectors {
		if err := builder.RegisterDetector(det); err != nil {
			return nil, err
		}
		keyFields[det.ID] = det.KeyFields
		strategy, _ := builder.Strategy(det.ID)
		tasks = append(tasks, ingest.Task{Detector: det, Strategy: strategy})
	}

	ingestStart := time.Now()
	metrics.UpdateWorkerCount(s.workerCount)
	loader := ingest.New(
		ingest.WithWorkerCount(s.workerCount),
		ingest.WithLogger(s.logger.Named("ingest")),
	)
	results, loadErr := loader.LoadAll(ctx, tasks)
	if loadErr != nil {
		if ctx.Err() != nil {
			return nil, loadErr
		}
		s.logger.Warn(ctx, "some detector streams failed to load", logger.Error(loadErr))
	}
	metrics.RecordStageLatency("ingest", msSince(ingestStart))

	assessments := make(map[string][]model.QualityAssessment)
	for _, r := range results {
		if err := builder.AddResult(r.DetectorID, r.Entities); err != nil {
			return nil, err
		}
		summary.LoadReports[r.DetectorID] = r.Report
		for _, rec := range r.Records {
			qa := s.assessor.Assess(rec, keyFields[r.DetectorID])
			metrics.RecordAssessment(string(qa.Flag))
			summary.FlagCounts[qa.Flag]++
			summary.RecordsAssessed++
			assessments[rec.EntityID] = append(assessments[rec.EntityID], qa)
		}
	}

	m, err := builder.Build()
	if err != nil {
		return nil, err
	}
	summary.Detectors = m.NumDetectors()
	summary.Entities = m.NumEntities()
	metrics.UpdateDetectorsTotal(m.NumDetectors())
	metrics.UpdateEntitiesTotal(m.NumEntities())

	correlateStart := time.Now()
	analysis, err := s.analyzer.Analyze(m)
	if err != nil {
		return nil, err
	}
	metrics.RecordStageLatency("correlate", msSince(correlateStart))
	for range analysis.Pairs {
		metrics.RecordPairComputed()
	}
	for range analysis.Omitted {
		metrics.RecordPairOmitted()
	}
	metrics.UpdateClustersFormed(len(analysis.Clusters))
	summary.PairsComputed = len(analysis.Pairs)
	summary.PairsOmitted = len(analysis.Omitted)
	summary.Clusters = len(analysis.Clusters)
	summary.LowConfidence = analysis.LowConfidence
	if analysis.LowConfidence {
		s.logger.Warn(ctx, "entity sample below correlation confidence gate",
			logger.Int("entities", analysis.EntityCount),
		)
	}

	fuseStart := time.Now()
	for _, entityID := range m.Entities() {
		entityStart := time.Now()
		score := s.engine.Fuse(entityID, assessments[entityID], analysis.Clusters)
		if err := s.store.Put(ctx, score); err != nil {
			return nil, fmt.Errorf("store score for %s: %w", entityID, err)
		}
		metrics.RecordScoreFused()
		metrics.RecordFusionLatency(msSince(entityStart))
		summary.ScoresFused++
	}
	metrics.RecordStageLatency("fuse", msSince(fuseStart))

	writer, err := artifacts.New(s.outputDir, artifacts.WithLogger(s.logger.Named("artifacts")))
	if err != nil {
		return nil, err
	}
	sampled := m.Entities()
	if len(sampled) > s.sampleEntityCount {
		sampled = sampled[:s.sampleEntityCount]
	}
	detectorMeta := builder.Detectors()
	sort.Slice(detectorMeta, func(i, j int) bool { return detectorMeta[i].ID < detectorMeta[j].ID })
	artifactStart := time.Now()
	writeErr := writer.WriteAll(ctx, artifacts.Run{
		RunID:           summary.RunID,
		GeneratedAt:     time.Now().UTC(),
		Detectors:       detectorMeta,
		Analysis:        *analysis,
		SampledEntities: sampled,
		Scores:          s.store.Snapshot(ctx),
		Assessments:     assessments,
	})
	metrics.RecordStageLatency("artifacts", msSince(artifactStart))

	summary.Duration = time.Since(started)
	s.logger.Info(ctx, "fusion run complete",
		logger.String("run_id", summary.RunID),
		logger.Int("entities", summary.Entities),
		logger.Int("pairs", summary.PairsComputed),
		logger.Int("clusters", summary.Clusters),
		logger.Int("scores", summary.ScoresFused),
		logger.String("duration", summary.Duration.String()),
	)
	if writeErr != nil {
		return summary, fmt.Errorf("%w: %w", ErrArtifactWrites, writeErr)
	}
	return summary, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
