// Package artifacts renders a completed run into the report files
// downstream review works from: the full correlation matrix document, a
// flat pair table for manual review, a heatmap, and the fused entity
// scores.
//
// Each file write is all-or-nothing (temp file + rename). One failed file
// never blocks the others; failures are joined and reported together.
package artifacts

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/correlation"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/logger"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/metrics"
)

// Artifact file names, fixed contract with downstream consumers.
const (
	CorrelationMatrixFile = "correlation_matrix.json"
	DetectorPairsFile     = "detector_pairs.csv"
	HeatmapFile           = "correlation_heatmap.json"
	EntityScoresFile      = "entity_scores.json"
)

// Run bundles everything one pipeline run produces for reporting.
type Run struct {
	RunID           string
	GeneratedAt     time.Time
	Detectors       []model.Detector
	Analysis        correlation.Analysis
	SampledEntities []string
	Scores          []model.ConfidenceScore
	Assessments     map[string][]model.QualityAssessment
}

// Summary is the count block of the correlation matrix document.
type Summary struct {
	EntityCount   int     `json:"entity_count"`
	DetectorCount int     `json:"detector_count"`
	PairCount     int     `json:"pair_count"`
	OmittedCount  int     `json:"omitted_pair_count"`
	ClusterCount  int     `json:"cluster_count"`
	Threshold     float64 `json:"cluster_threshold"`
	LowConfidence bool    `json:"low_confidence"`
}

// CorrelationMatrixDoc is the wire form of correlation_matrix.json.
type CorrelationMatrixDoc struct {
	RunID           string                    `json:"run_id"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	Detectors       []model.Detector          `json:"detectors"`
	Pairs           []correlation.PairResult  `json:"pairs"`
	Omitted         []correlation.OmittedPair `json:"omitted_pairs"`
	Clusters        []correlation.Cluster     `json:"clusters"`
	SampledEntities []string                  `json:"sampled_entities"`
	Summary         Summary                   `json:"summary"`
}

// EntityScore is one row of entity_scores.json: the fused score plus the
// per-record quality attachments downstream storage keeps.
type EntityScore struct {
	model.ConfidenceScore
	Assessments []model.QualityAssessment `json:"assessments,omitempty"`
}

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithLogger sets a custom logger for the writer.
func WithLogger(log logger.Logger) Option {
	return func(w *Writer) {
		if log != nil {
			w.logger = log
		}
	}
}

// Writer renders run artifacts into a directory.
type Writer struct {
	dir    string
	logger logger.Logger
}

// New creates a Writer targeting dir, creating it if needed.
func New(dir string, opts ...Option) (*Writer, error) {
	if dir == "" {
		return nil, ErrNoOutputDir
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	w := &Writer{
		dir:    dir,
		logger: logger.Get().Named("artifacts"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// WriteAll renders every artifact for the run. Each file is independent;
// the returned error joins whatever failed.
func (w *Writer) WriteAll(ctx context.Context, run Run) error {
	writes := []struct {
		name  string
		write func(Run) error
	}{
		{CorrelationMatrixFile, w.writeCorrelationMatrix},
		{DetectorPairsFile, w.writeDetectorPairs},
		{HeatmapFile, w.writeHeatmap},
		{EntityScoresFile, w.writeEntityScores},
	}

	var errs []error
	for _, item := range writes {
		if err := item.write(run); err != nil {
			metrics.RecordArtifactWriteError()
			w.logger.Error(ctx, "artifact write failed",
				logger.String("artifact", item.name),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", item.name, err))
			continue
		}
		metrics.RecordArtifactWrite(item.name)
		w.logger.Debug(ctx, "artifact written",
			logger.String("artifact", item.name),
			logger.String("dir", w.dir),
		)
	}
	return errors.Join(errs...)
}

func (w *Writer) writeCorrelationMatrix(run Run) error {
	doc := CorrelationMatrixDoc{
		RunID:           run.RunID,
		GeneratedAt:     run.GeneratedAt,
		Detectors:       run.Detectors,
		Pairs:           run.Analysis.Pairs,
		Omitted:         run.Analysis.Omitted,
		Clusters:        run.Analysis.Clusters,
		SampledEntities: run.SampledEntities,
		Summary: Summary{
			EntityCount:   run.Analysis.EntityCount,
			DetectorCount: run.Analysis.DetectorCount,
			PairCount:     len(run.Analysis.Pairs),
			OmittedCount:  len(run.Analysis.Omitted),
			ClusterCount:  len(run.Analysis.Clusters),
			Threshold:     run.Analysis.Threshold,
			LowConfidence: run.Analysis.LowConfidence,
		},
	}
	return w.writeJSON(CorrelationMatrixFile, doc)
}

// writeDetectorPairs renders the flat review table, sorted by Pearson r
// descending so the strongest correlations surface first.
func (w *Writer) writeDetectorPairs(run Run) error {
	pairs := make([]correlation.PairResult, len(run.Analysis.Pairs))
	copy(pairs, run.Analysis.Pairs)
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].PearsonR != pairs[j].PearsonR {
			return pairs[i].PearsonR > pairs[j].PearsonR
		}
		if pairs[i].DetectorA != pairs[j].DetectorA {
			return pairs[i].DetectorA < pairs[j].DetectorA
		}
		return pairs[i].DetectorB < pairs[j].DetectorB
	})

	rows := make([][]string, 0, len(pairs)+1)
	rows = append(rows, []string{
		"detector_a", "detector_b", "pearson_r", "p_value", "phi", "mcc",
		"jaccard", "both", "only_a", "only_b", "neither", "interpretation",
	})
	for _, p := range pairs {
		rows = append(rows, []string{
			p.DetectorA,
			p.DetectorB,
			formatFloat(p.PearsonR),
			formatFloat(p.PValue),
			formatFloat(p.Phi),
			formatFloat(p.MCC),
			formatFloat(p.Jaccard),
			strconv.Itoa(p.Contingency.Both),
			strconv.Itoa(p.Contingency.OnlyA),
			strconv.Itoa(p.Contingency.OnlyB),
			strconv.Itoa(p.Contingency.Neither),
			p.Interpretation,
		})
	}

	return w.writeAtomic(DetectorPairsFile, func(f *os.File) error {
		cw := csv.NewWriter(f)
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	})
}

// writeHeatmap renders detector x detector -> Pearson r. The diagonal is
// 1.0; pairs with undefined statistics are simply absent.
func (w *Writer) writeHeatmap(run Run) error {
	heatmap := make(map[string]map[string]float64, len(run.Detectors))
	for _, det := range run.Detectors {
		heatmap[det.ID] = map[string]float64{det.ID: 1.0}
	}
	for _, p := range run.Analysis.Pairs {
		if _, ok := heatmap[p.DetectorA]; !ok {
			heatmap[p.DetectorA] = map[string]float64{p.DetectorA: 1.0}
		}
		if _, ok := heatmap[p.DetectorB]; !ok {
			heatmap[p.DetectorB] = map[string]float64{p.DetectorB: 1.0}
		}
		heatmap[p.DetectorA][p.DetectorB] = p.PearsonR
		heatmap[p.DetectorB][p.DetectorA] = p.PearsonR
	}
	return w.writeJSON(HeatmapFile, heatmap)
}

func (w *Writer) writeEntityScores(run Run) error {
	entries := make([]EntityScore, 0, len(run.Scores))
	for _, score := range run.Scores {
		entries = append(entries, EntityScore{
			ConfidenceScore: score,
			Assessments:     run.Assessments[score.EntityID],
		})
	}
	return w.writeJSON(EntityScoresFile, entries)
}

// ReadCorrelationMatrix reloads a previously written correlation matrix
// document. The JSON round-trip is lossless for every numeric field.
func ReadCorrelationMatrix(path string) (CorrelationMatrixDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CorrelationMatrixDoc{}, fmt.Errorf("%w: %w", ErrReadArtifact, err)
	}
	var doc CorrelationMatrixDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return CorrelationMatrixDoc{}, fmt.Errorf("%w: %w", ErrReadArtifact, err)
	}
	return doc, nil
}

func (w *Writer) writeJSON(name string, v any) error {
	return w.writeAtomic(name, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeAtomic writes through a temp file in the same directory and renames
// into place, so a crashed write never leaves a truncated artifact.
func (w *Writer) writeAtomic(name string, fill func(*os.File) error) error {
	f, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	if err := os.Rename(tmp, filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
