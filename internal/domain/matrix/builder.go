package matrix

import (
	"fmt"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

// Builder accumulates registered detectors and their per-detector entity
// sets, then materializes one immutable Matrix. Registration compiles each
// detector's identifier strategy exactly once.
type Builder struct {
	detectors  map[string]model.Detector
	strategies map[string]IdentifierStrategy
	results    map[string]map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		detectors:  make(map[string]model.Detector),
		strategies: make(map[string]IdentifierStrategy),
		results:    make(map[string]map[string]struct{}),
	}
}

// RegisterDetector records a detector's identity and compiles its
// identifier strategy. Re-registering the same id overwrites the prior
// registration.
func (b *Builder) RegisterDetector(det model.Detector) error {
	if det.ID == "" {
		return fmt.Errorf("%w: empty detector id", ErrInvalidDetector)
	}
	if !det.Tier.Valid() {
		return fmt.Errorf("%w: detector %s has tier %d", ErrInvalidDetector, det.ID, det.Tier)
	}
	b.detectors[det.ID] = det
	b.strategies[det.ID] = CompileIdentifier(det.IdentifierKeys)
	return nil
}

// Strategy returns the compiled identifier strategy for a registered
// detector.
func (b *Builder) Strategy(detectorID string) (IdentifierStrategy, bool) {
	s, ok := b.strategies[detectorID]
	return s, ok
}

// Detector returns a registered detector's metadata.
func (b *Builder) Detector(detectorID string) (model.Detector, bool) {
	d, ok := b.detectors[detectorID]
	return d, ok
}

// AddResult stores one detector's flagged entities. Loading is idempotent:
// re-adding the same detector id replaces its prior contribution rather
// than duplicating it. Entity ids are normalized here, the single point
// where raw identifiers become matrix keys.
func (b *Builder) AddResult(detectorID string, entities []string) error {
	if _, ok := b.detectors[detectorID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDetector, detectorID)
	}
	set := make(map[string]struct{}, len(entities))
	for _, raw := range entities {
		id := model.NormalizeEntityID(raw)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	b.results[detectorID] = set
	return nil
}

// Build materializes the matrix over the union of entities that at least
// one detector flagged. The returned value is a complete, consistent
// snapshot; the builder can keep loading afterward without affecting it.
func (b *Builder) Build() (*Matrix, error) {
	if len(b.results) == 0 {
		return nil, ErrNoResults
	}
	return newMatrix(b.results), nil
}

// Detectors returns metadata for every registered detector, with
// DetectionCount filled in from the loaded results.
func (b *Builder) Detectors() []model.Detector {
	out := make([]model.Detector, 0, len(b.detectors))
	for id, det := range b.detectors {
		det.DetectionCount = len(b.results[id])
		out = append(out, det)
	}
	return out
}
