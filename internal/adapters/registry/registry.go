// Package registry loads the detector registry: the configuration listing
// every detector's identity, output file, evidence tier and field mappings.
//
// The registry is the system's source of truth for detector identity; a
// detector registered here is stable across runs. When the file is absent
// the caller is expected to emit an example and exit without processing —
// explicitly, not as a crash.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

// Entry is one detector declaration as it appears in the YAML file.
type Entry struct {
	ID               string   `koanf:"id"`
	Version          string   `koanf:"version"`
	Description      string   `koanf:"description"`
	OutputFile       string   `koanf:"output_file"`
	Tier             int      `koanf:"tier"`
	KeyFields        []string `koanf:"key_fields"`
	IdentifierFields []string `koanf:"identifier_fields"`
}

type registryFile struct {
	Detectors []Entry `koanf:"detectors"`
}

// DefaultKeyFields is applied to entries that omit key_fields, so a sparse
// registry still counts the common evidence fields instead of assessing
// every record as NO_DATA.
var DefaultKeyFields = []string{"country", "city", "name", "address"}

// Load reads and validates the registry at path. Relative output_file
// entries are resolved against the registry file's directory.
func Load(_ context.Context, path string) ([]model.Detector, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
	}

	var parsed registryFile
	if err := k.UnmarshalWithConf("", &parsed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
	}
	if len(parsed.Detectors) == 0 {
		return nil, fmt.Errorf("%w: no detectors declared in %s", ErrInvalidRegistry, path)
	}

	baseDir := filepath.Dir(path)
	seen := make(map[string]struct{}, len(parsed.Detectors))
	detectors := make([]model.Detector, 0, len(parsed.Detectors))

	for _, e := range parsed.Detectors {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: detector with empty id", ErrInvalidRegistry)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate detector id %q", ErrInvalidRegistry, e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.OutputFile == "" {
			return nil, fmt.Errorf("%w: detector %q has no output_file", ErrInvalidRegistry, e.ID)
		}
		tier := model.Tier(e.Tier)
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: detector %q has tier %d, want 1..3", ErrInvalidRegistry, e.ID, e.Tier)
		}

		outputFile := e.OutputFile
		if !filepath.IsAbs(outputFile) {
			outputFile = filepath.Join(baseDir, outputFile)
		}

		keyFields := e.KeyFields
		if len(keyFields) == 0 {
			keyFields = DefaultKeyFields
		}

		detectors = append(detectors, model.Detector{
			ID:             e.ID,
			Version:        e.Version,
			Description:    e.Description,
			OutputFile:     outputFile,
			Tier:           tier,
			KeyFields:      keyFields,
			IdentifierKeys: e.IdentifierFields,
		})
	}

	return detectors, nil
}

// exampleRegistry is the template emitted when no registry exists yet.
const exampleRegistry = `# Detector registry.
#
# Each detector is a named, versioned evidence source producing one NDJSON
# file, one detection object per line. Tier ranks source authority:
#   1 = authoritative / government source
#   2 = verified third party
#   3 = unverified
#
# identifier_fields is the ordered fallback chain used to pull the entity
# identifier out of each line; dotted keys walk nested objects.
detectors:
  - id: procurement_awards
    version: "1.0.0"
    description: "Procurement award screening hits"
    output_file: detections/procurement_awards.ndjson
    tier: 1
    key_fields: [country, city, name, address]
    identifier_fields: [entity_id, canonical_name, vendor.name]

  - id: patent_assignees
    version: "1.0.0"
    description: "Patent assignee screening hits"
    output_file: detections/patent_assignees.ndjson
    tier: 2
    key_fields: [country, name]
    identifier_fields: [entity_id, assignee.name]

  - id: coauthor_affiliations
    version: "1.0.0"
    description: "Research co-authorship affiliation hits"
    output_file: detections/coauthor_affiliations.ndjson
    tier: 3
    key_fields: [country, name, address]
    identifier_fields: [entity_id, canonical_name]
`

// Write renders entries as a registry YAML file at path.
func Write(path string, entries []Entry) error {
	detectors := make([]map[string]any, len(entries))
	for i, e := range entries {
		detectors[i] = map[string]any{
			"id":                e.ID,
			"version":           e.Version,
			"description":       e.Description,
			"output_file":       e.OutputFile,
			"tier":              e.Tier,
			"key_fields":        e.KeyFields,
			"identifier_fields": e.IdentifierFields,
		}
	}
	data, err := yaml.Parser().Marshal(map[string]any{"detectors": detectors})
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// WriteExample emits a commented example registry at path.
func WriteExample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write example registry: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleRegistry), 0o644); err != nil {
		return fmt.Errorf("write example registry: %w", err)
	}
	return nil
}
