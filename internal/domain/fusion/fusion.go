// Package fusion combines per-record quality assessments into one
// calibrated confidence score per entity.
//
// Redundant detectors are collapsed first: within each correlation cluster
// only the single highest-confidence assessment contributes, so two
// detectors keying off the same underlying signal never vote twice.
// Independent clusters then sum tier-weighted contributions, capped at 1.0.
package fusion

import (
	"sort"
	"strconv"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/correlation"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

// Default fusion weighting. Tier weights are per independent cluster hit.
const (
	DefaultTier1Weight        = 0.25
	DefaultTier2Weight        = 0.15
	DefaultTier3Weight        = 0.05
	DefaultCorroborationBonus = 1.1

	corroborationMinRecords  = 3 // bonus requires more records than this
	corroborationMinClusters = 3 // and at least this many independent clusters

	maxScore = 1.0

	uncertaintyTight  = 0.05 // >=5 independent evidence pieces
	uncertaintyMedium = 0.10 // >=3
	uncertaintyWide   = 0.20
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTierWeights overrides the per-tier contribution weights.
func WithTierWeights(tier1, tier2, tier3 float64) Option {
	return func(e *Engine) {
		if tier1 > 0 && tier2 > 0 && tier3 > 0 {
			e.tierWeights = map[model.Tier]float64{
				model.TierAuthoritative: tier1,
				model.TierVerified:      tier2,
				model.TierUnverified:    tier3,
			}
		}
	}
}

// WithCorroborationBonus overrides the multiplier applied when several
// independent clusters agree.
func WithCorroborationBonus(bonus float64) Option {
	return func(e *Engine) {
		if bonus >= 1 {
			e.bonus = bonus
		}
	}
}

// Engine fuses tiered, correlation-discounted evidence.
type Engine struct {
	tierWeights map[model.Tier]float64
	bonus       float64
}

// New creates a fusion Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		tierWeights: map[model.Tier]float64{
			model.TierAuthoritative: DefaultTier1Weight,
			model.TierVerified:      DefaultTier2Weight,
			model.TierUnverified:    DefaultTier3Weight,
		},
		bonus: DefaultCorroborationBonus,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fuse combines all assessments for one entity into a ConfidenceScore.
// Only CONFIRMED_POSITIVE assessments add weight; NO_DATA, LOW_DATA, MIXED
// and CONFIRMED_NEGATIVE records are counted as analyzed but contribute
// nothing — absence of evidence never manufactures confidence.
func (e *Engine) Fuse(entityID string, assessments []model.QualityAssessment, clusters []correlation.Cluster) model.ConfidenceScore {
	representatives := e.clusterRepresentatives(assessments, clusters)

	score := 0.0
	bestTier := model.Tier(0)
	contributing := make([]string, 0, len(representatives))
	for _, rep := range representatives {
		score += e.tierWeights[rep.Tier]
		if bestTier == 0 || rep.Tier < bestTier {
			bestTier = rep.Tier
		}
		contributing = append(contributing, rep.DetectorID)
	}
	if score > maxScore {
		score = maxScore
	}

	if len(assessments) > corroborationMinRecords && len(representatives) >= corroborationMinClusters {
		score *= e.bonus
		if score > maxScore {
			score = maxScore
		}
	}

	sort.Strings(contributing)

	uncertainty := uncertaintyWide
	switch {
	case len(representatives) >= 5:
		uncertainty = uncertaintyTight
	case len(representatives) >= 3:
		uncertainty = uncertaintyMedium
	}

	return model.ConfidenceScore{
		EntityID:              entityID,
		Score:                 score,
		Uncertainty:           uncertainty,
		Tier:                  bestTier,
		ContributingDetectors: contributing,
		Display:               model.FormatDisplay(score, uncertainty),
	}
}

// clusterRepresentatives groups positive assessments by cluster membership
// and keeps the single highest-confidence one per cluster. Ties break
// toward the better (lower) tier, then the lexically smaller detector id,
// keeping fusion deterministic.
func (e *Engine) clusterRepresentatives(assessments []model.QualityAssessment, clusters []correlation.Cluster) []model.QualityAssessment {
	best := make(map[string]model.QualityAssessment)

	// Detectors absent from the cluster partition (e.g. correlation was
	// not run over them) count as independent singletons keyed by id.
	clusterKey := func(detectorID string) string {
		if idx := correlation.ClusterOf(clusters, detectorID); idx >= 0 {
			return "cluster:" + strconv.Itoa(idx)
		}
		return "detector:" + detectorID
	}

	for _, a := range assessments {
		if a.Flag != model.FlagConfirmedPositive || !a.Tier.Valid() {
			continue
		}
		key := clusterKey(a.DetectorID)
		current, ok := best[key]
		if !ok || better(a, current) {
			best[key] = a
		}
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.QualityAssessment, 0, len(best))
	for _, k := range keys {
		out = append(out, best[k])
	}
	return out
}

func better(a, b model.QualityAssessment) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	return a.DetectorID < b.DetectorID
}
