// Package scorestore defines the fused score store interface and errors.
package scorestore

import (
	"context"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

// Store provides read/write access to fused entity confidence scores.
//
// Ordering for ranked reads: score DESC, then entityID ASC (deterministic).
type Store interface {
	// Put stores the fused score for an entity, replacing any previous score.
	Put(ctx context.Context, score model.ConfidenceScore) error

	// Get returns the fused score for an entity.
	// Returns ErrNotFound if the entity has no score.
	Get(ctx context.Context, entityID string) (model.ConfidenceScore, error)

	// TopN returns the top-N entities ordered by score desc.
	TopN(ctx context.Context, n int) ([]model.ConfidenceScore, error)

	// Snapshot returns every stored score in ranked order.
	Snapshot(ctx context.Context) []model.ConfidenceScore

	// Count returns the number of entities with a fused score.
	Count(ctx context.Context) int
}
