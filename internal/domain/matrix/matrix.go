// Package matrix builds the entities × detectors binary hit matrix.
//
// The builder accumulates per-detector result sets and materializes one
// immutable Matrix value; no partially-built matrix is ever visible to the
// correlation analyzer.
package matrix

import "sort"

// Matrix is the immutable entities × detectors binary matrix. Only entities
// flagged by at least one detector are materialized, so every row contains
// at least one 1.
type Matrix struct {
	detectors []string
	entities  []string
	detIndex  map[string]int
	entIndex  map[string]int
	hits      []bool // row-major: entity row, detector column
}

// Detectors returns the detector ids in column order (sorted).
func (m *Matrix) Detectors() []string {
	out := make([]string, len(m.detectors))
	copy(out, m.detectors)
	return out
}

// Entities returns the entity ids in row order (sorted).
func (m *Matrix) Entities() []string {
	out := make([]string, len(m.entities))
	copy(out, m.entities)
	return out
}

// NumDetectors returns the number of detector columns.
func (m *Matrix) NumDetectors() int { return len(m.detectors) }

// NumEntities returns the number of entity rows.
func (m *Matrix) NumEntities() int { return len(m.entities) }

// Hit reports the cell value for an entity/detector pair.
func (m *Matrix) Hit(entityID, detectorID string) bool {
	row, ok := m.entIndex[entityID]
	if !ok {
		return false
	}
	col, ok := m.detIndex[detectorID]
	if !ok {
		return false
	}
	return m.hits[row*len(m.detectors)+col]
}

// Column returns one detector's binary column as floats, ordered by entity
// row, for the statistics layer.
func (m *Matrix) Column(detectorID string) ([]float64, bool) {
	col, ok := m.detIndex[detectorID]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(m.entities))
	for row := range m.entities {
		if m.hits[row*len(m.detectors)+col] {
			out[row] = 1
		}
	}
	return out, true
}

// DetectionCount returns how many entities a detector flagged.
func (m *Matrix) DetectionCount(detectorID string) int {
	col, ok := m.detIndex[detectorID]
	if !ok {
		return 0
	}
	n := 0
	for row := range m.entities {
		if m.hits[row*len(m.detectors)+col] {
			n++
		}
	}
	return n
}

func newMatrix(results map[string]map[string]struct{}) *Matrix {
	m := &Matrix{
		detIndex: make(map[string]int),
		entIndex: make(map[string]int),
	}

	for id := range results {
		m.detectors = append(m.detectors, id)
	}
	sort.Strings(m.detectors)
	for i, id := range m.detectors {
		m.detIndex[id] = i
	}

	union := make(map[string]struct{})
	for _, entities := range results {
		for e := range entities {
			union[e] = struct{}{}
		}
	}
	for e := range union {
		m.entities = append(m.entities, e)
	}
	sort.Strings(m.entities)
	for i, e := range m.entities {
		m.entIndex[e] = i
	}

	m.hits = make([]bool, len(m.entities)*len(m.detectors))
	for det, entities := range results {
		col := m.detIndex[det]
		for e := range entities {
			m.hits[m.entIndex[e]*len(m.detectors)+col] = true
		}
	}
	return m
}
