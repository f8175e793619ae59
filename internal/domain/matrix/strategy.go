package matrix

import "strings"

// IdentifierStrategy extracts the entity identifier from one decoded NDJSON
// object. Strategies are compiled once at detector registration, never
// re-derived per line.
type IdentifierStrategy interface {
	// Resolve returns the raw identifier and true, or "" and false when
	// the object carries nothing usable.
	Resolve(obj map[string]any) (string, bool)
}

// Direct reads a single top-level field.
type Direct struct {
	Field string
}

// Resolve implements IdentifierStrategy.
func (d Direct) Resolve(obj map[string]any) (string, bool) {
	return stringValue(obj[d.Field])
}

// Nested walks a dotted path through nested objects.
type Nested struct {
	Path []string
}

// Resolve implements IdentifierStrategy.
func (n Nested) Resolve(obj map[string]any) (string, bool) {
	current := any(obj)
	for _, key := range n.Path {
		m, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current = m[key]
	}
	return stringValue(current)
}

// FirstOf tries strategies in order; the first non-empty match wins.
type FirstOf struct {
	Strategies []IdentifierStrategy
}

// Resolve implements IdentifierStrategy.
func (f FirstOf) Resolve(obj map[string]any) (string, bool) {
	for _, s := range f.Strategies {
		if id, ok := s.Resolve(obj); ok {
			return id, true
		}
	}
	return "", false
}

// DefaultIdentifierKeys is the fallback chain used when a detector declares
// no identifier fields of its own.
var DefaultIdentifierKeys = []string{"entity_id", "canonical_name", "name"}

// CompileIdentifier turns an ordered list of field declarations into a
// strategy. A key containing dots becomes a Nested path, otherwise Direct;
// the whole list is a FirstOf chain. An empty list compiles the default
// chain.
func CompileIdentifier(keys []string) IdentifierStrategy {
	if len(keys) == 0 {
		keys = DefaultIdentifierKeys
	}
	strategies := make([]IdentifierStrategy, 0, len(keys))
	for _, key := range keys {
		if strings.Contains(key, ".") {
			strategies = append(strategies, Nested{Path: strings.Split(key, ".")})
		} else {
			strategies = append(strategies, Direct{Field: key})
		}
	}
	if len(strategies) == 1 {
		return strategies[0]
	}
	return FirstOf{Strategies: strategies}
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
