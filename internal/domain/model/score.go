package model

import "fmt"

// Tier ranks how authoritative an evidence source is. Lower is better:
// 1 government/authoritative, 2 verified third party, 3 unverified.
type Tier int

const (
	TierAuthoritative Tier = 1
	TierVerified      Tier = 2
	TierUnverified    Tier = 3
)

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	return t >= TierAuthoritative && t <= TierUnverified
}

// ConfidenceScore is the fused, cluster-deduplicated verdict for an entity.
type ConfidenceScore struct {
	EntityID              string   `json:"entity_id"`
	Score                 float64  `json:"score"`
	Uncertainty           float64  `json:"uncertainty"`
	Tier                  Tier     `json:"tier"`
	ContributingDetectors []string `json:"contributing_detectors"`
	Display               string   `json:"score_display"`
}

// FormatDisplay renders "score ± uncertainty" the way downstream reports
// expect it.
func FormatDisplay(score, uncertainty float64) string {
	return fmt.Sprintf("%.2f ± %.2f", score, uncertainty)
}
