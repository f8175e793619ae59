// Package scorestore defines the fused score store interface and errors.
package scorestore

import (
	"context"
	"sort"
	"sync"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

// MemStore is an in-memory Store implementation.
//
// A single fusion run writes each entity once and reads happen after the
// write phase, so a map guarded by an RWMutex with sort-on-read is
// sufficient; nothing here needs an ordered index maintained per write.
type MemStore struct {
	mu     sync.RWMutex
	scores map[string]model.ConfidenceScore
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory score store.
func NewMemStore() *MemStore {
	return &MemStore{scores: make(map[string]model.ConfidenceScore)}
}

// Put stores the fused score for an entity, replacing any previous score.
func (s *MemStore) Put(_ context.Context, score model.ConfidenceScore) error {
	if score.EntityID == "" {
		return ErrEmptyEntityID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[score.EntityID] = score
	return nil
}

// Get returns the fused score for an entity.
func (s *MemStore) Get(_ context.Context, entityID string) (model.ConfidenceScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[entityID]
	if !ok {
		return model.ConfidenceScore{}, ErrNotFound
	}
	return score, nil
}

// TopN returns the top-N entities ordered by score desc, entityID asc.
func (s *MemStore) TopN(ctx context.Context, n int) ([]model.ConfidenceScore, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	ranked := s.Snapshot(ctx)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Snapshot returns every stored score in ranked order.
func (s *MemStore) Snapshot(_ context.Context) []model.ConfidenceScore {
	s.mu.RLock()
	ranked := make([]model.ConfidenceScore, 0, len(s.scores))
	for _, score := range s.scores {
		ranked = append(ranked, score)
	}
	s.mu.RUnlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].EntityID < ranked[j].EntityID
	})
	return ranked
}

// Count returns the number of entities with a fused score.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}
