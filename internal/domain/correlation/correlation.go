// Package correlation measures how redundant detectors are with each other.
//
// For every unordered detector pair it computes Pearson r with a two-sided
// p-value, the Phi coefficient (identical to Pearson for binary data, both
// reported for audit clarity), the Matthews Correlation Coefficient, and
// Jaccard similarity, then clusters detectors whose |r| crosses the
// configured threshold. The fusion engine consumes those clusters to avoid
// double-counting correlated evidence.
package correlation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/matrix"
)

// Default analysis configuration constants.
const (
	DefaultClusterThreshold = 0.7
	DefaultMinEntities      = 10
)

// Contingency holds the 2×2 counts for a detector pair.
type Contingency struct {
	Both    int `json:"both"`
	OnlyA   int `json:"only_a"`
	OnlyB   int `json:"only_b"`
	Neither int `json:"neither"`
}

// PairResult is the symmetric statistics bundle for one unordered detector
// pair; DetectorA < DetectorB lexically, computed once per pair.
type PairResult struct {
	DetectorA      string      `json:"detector_a"`
	DetectorB      string      `json:"detector_b"`
	PearsonR       float64     `json:"pearson_r"`
	PValue         float64     `json:"p_value"`
	Phi            float64     `json:"phi"`
	MCC            float64     `json:"mcc"`
	Jaccard        float64     `json:"jaccard"`
	Contingency    Contingency `json:"contingency"`
	Interpretation string      `json:"interpretation"`
	LowConfidence  bool        `json:"low_confidence"`
}

// OmittedPair records a pair whose statistics were undefined, with the
// reason; partial failure is isolated at the pair level.
type OmittedPair struct {
	DetectorA string `json:"detector_a"`
	DetectorB string `json:"detector_b"`
	Reason    string `json:"reason"`
}

// Cluster is a maximal set of transitively |r|-connected detectors. The
// clusters partition the detector set; isolated detectors form singletons.
type Cluster struct {
	Detectors []string `json:"detectors"`
}

// Contains reports whether detectorID belongs to this cluster.
func (c Cluster) Contains(detectorID string) bool {
	for _, d := range c.Detectors {
		if d == detectorID {
			return true
		}
	}
	return false
}

// Analysis is the complete output of one correlation run.
type Analysis struct {
	Pairs         []PairResult  `json:"pairs"`
	Omitted       []OmittedPair `json:"omitted_pairs"`
	Clusters      []Cluster     `json:"clusters"`
	EntityCount   int           `json:"entity_count"`
	DetectorCount int           `json:"detector_count"`
	Threshold     float64       `json:"cluster_threshold"`
	LowConfidence bool          `json:"low_confidence"`
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithClusterThreshold sets the |r| edge threshold for clustering.
func WithClusterThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		if threshold > 0 && threshold <= 1 {
			a.threshold = threshold
		}
	}
}

// WithMinEntities sets the sample-size gate below which results are still
// computed but marked low-confidence.
func WithMinEntities(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minEntities = n
		}
	}
}

// Analyzer computes pairwise statistics and clusters over one matrix.
type Analyzer struct {
	threshold   float64
	minEntities int
}

// New creates an Analyzer with configuration options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		threshold:   DefaultClusterThreshold,
		minEntities: DefaultMinEntities,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes every unordered pair's statistics and the resulting
// cluster partition. Fewer than two detectors is a hard error; correlation
// over a single source is meaningless and must not silently return empty
// results.
func (a *Analyzer) Analyze(m *matrix.Matrix) (*Analysis, error) {
	detectors := m.Detectors()
	if len(detectors) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrTooFewDetectors, len(detectors))
	}

	lowConfidence := m.NumEntities() < a.minEntities
	out := &Analysis{
		EntityCount:   m.NumEntities(),
		DetectorCount: len(detectors),
		Threshold:     a.threshold,
		LowConfidence: lowConfidence,
	}

	columns := make(map[string][]float64, len(detectors))
	for _, id := range detectors {
		col, _ := m.Column(id)
		columns[id] = col
	}

	for i := 0; i < len(detectors); i++ {
		for j := i + 1; j < len(detectors); j++ {
			pair, err := computePair(detectors[i], detectors[j], columns[detectors[i]], columns[detectors[j]])
			if err != nil {
				out.Omitted = append(out.Omitted, OmittedPair{
					DetectorA: detectors[i],
					DetectorB: detectors[j],
					Reason:    err.Error(),
				})
				continue
			}
			pair.LowConfidence = lowConfidence
			out.Pairs = append(out.Pairs, pair)
		}
	}

	out.Clusters = clusterDetectors(detectors, out.Pairs, a.threshold)
	return out, nil
}

// computePair derives all statistics for one pair. A zero-variance column
// (all zeros or all ones) makes Pearson undefined; the pair is omitted
// rather than reported as a numeric coincidence.
func computePair(idA, idB string, colA, colB []float64) (PairResult, error) {
	ct := contingency(colA, colB)
	n := len(colA)

	if ct.Both+ct.OnlyA == 0 || ct.Both+ct.OnlyA == n {
		return PairResult{}, fmt.Errorf("%w: detector %s has zero variance", ErrUndefinedStatistic, idA)
	}
	if ct.Both+ct.OnlyB == 0 || ct.Both+ct.OnlyB == n {
		return PairResult{}, fmt.Errorf("%w: detector %s has zero variance", ErrUndefinedStatistic, idB)
	}

	r := stat.Correlation(colA, colB, nil)
	// Bitwise-identical (or exactly complementary) columns are r = ±1 by
	// definition; snap so the threshold=1.0 clustering contract holds.
	switch {
	case ct.OnlyA == 0 && ct.OnlyB == 0:
		r = 1
	case ct.Both == 0 && ct.Neither == 0:
		r = -1
	}

	return PairResult{
		DetectorA:      idA,
		DetectorB:      idB,
		PearsonR:       r,
		PValue:         pValue(r, n),
		Phi:            r, // Phi coefficient equals Pearson r for binary vectors
		MCC:            mcc(ct),
		Jaccard:        Jaccard(colA, colB),
		Contingency:    ct,
		Interpretation: Interpret(r),
	}, nil
}

func contingency(colA, colB []float64) Contingency {
	var ct Contingency
	for k := range colA {
		a, b := colA[k] != 0, colB[k] != 0
		switch {
		case a && b:
			ct.Both++
		case a:
			ct.OnlyA++
		case b:
			ct.OnlyB++
		default:
			ct.Neither++
		}
	}
	return ct
}

// pValue is the two-sided p-value of Pearson r under the t distribution
// with n-2 degrees of freedom. With fewer than three samples the test has
// no degrees of freedom and 1.0 is reported (no evidence against
// independence).
func pValue(r float64, n int) float64 {
	if n < 3 {
		return 1.0
	}
	if math.Abs(r) >= 1 {
		return 0.0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// mcc computes the Matthews Correlation Coefficient from the contingency
// table, the recommended primary metric under class imbalance. A zero
// denominator yields 0 by the usual convention.
func mcc(ct Contingency) float64 {
	a, b, c, d := float64(ct.Both), float64(ct.OnlyA), float64(ct.OnlyB), float64(ct.Neither)
	denom := math.Sqrt((a + b) * (a + c) * (b + d) * (c + d))
	if denom == 0 {
		return 0
	}
	return (a*d - b*c) / denom
}

// Jaccard returns |A∩B| / |A∪B| over two binary vectors, 0 when the union
// is empty.
func Jaccard(colA, colB []float64) float64 {
	intersection, union := 0, 0
	for k := range colA {
		a, b := colA[k] != 0, colB[k] != 0
		if a && b {
			intersection++
		}
		if a || b {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Interpret renders the redundancy band for |r|.
func Interpret(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return "HIGH correlation - discount in fusion"
	case abs >= 0.4:
		return "MODERATE correlation"
	case abs >= 0.2:
		return "LOW correlation"
	default:
		return "VERY LOW correlation - effectively independent"
	}
}
