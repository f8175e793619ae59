// Package synth generates synthetic detector registries and NDJSON
// detection streams so correlation and fusion behavior can be exercised
// end-to-end without real collection data.
//
// Detectors are generated in pairs: the second detector of a pair re-fires
// on its sibling's entities with the configured overlap probability, which
// gives the correlation analyzer real clusters to find.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/adapters/registry"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/logger"
)

// Generation defaults.
const (
	DefaultDetectors = 4
	DefaultEntities  = 60
	DefaultOverlap   = 0.9
	defaultHitRate   = 0.4

	filePermission      = 0o600
	directoryPermission = 0o750
)

// Config controls what gets generated.
type Config struct {
	Dir       string  // output directory for registry + streams
	Detectors int     // number of detectors (>= 2)
	Entities  int     // size of the shared entity pool
	Overlap   float64 // probability a sibling detector re-fires on a shared hit
	Seed      int64   // rng seed, fixed seed means fixed output
}

// Manifest describes what a generation run produced.
type Manifest struct {
	RegistryPath string
	Detectors    []model.Detector
	Entities     []string
	Detections   int
}

// Generator writes synthetic detector data.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	logger logger.Logger
}

// New creates a Generator for the given config, applying defaults for
// zero values.
func New(cfg Config) *Generator {
	if cfg.Detectors < 2 {
		cfg.Detectors = DefaultDetectors
	}
	if cfg.Entities <= 0 {
		cfg.Entities = DefaultEntities
	}
	if cfg.Overlap <= 0 || cfg.Overlap > 1 {
		cfg.Overlap = DefaultOverlap
	}
	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // synthetic data, determinism wanted
		logger: logger.Get().Named("synth"),
	}
}

// entityProfile is one synthetic organization with fields the assessor
// can find signals in.
type entityProfile struct {
	id      string
	country string
	city    string
	name    string
}

var targetProfiles = []entityProfile{
	{country: "CN", city: "Beijing", name: "Huawei Research Institute"},
	{country: "CN", city: "Shenzhen", name: "ZTE Advanced Systems"},
	{country: "HK", city: "Hong Kong", name: "Academy of Sciences Trading Co"},
	{country: "CN", city: "Chengdu", name: "CETC Subsidiary Nine"},
}

var foreignProfiles = []entityProfile{
	{country: "DE", city: "Munich", name: "Bolt Praezision GmbH"},
	{country: "US", city: "Austin", name: "Redline Components LLC"},
	{country: "FR", city: "Lyon", name: "Machines Aubert SARL"},
	{country: "JP", city: "Osaka", name: "Tanaka Kogyo Kabushiki Kaisha"},
}

// Generate writes the registry and one NDJSON stream per detector.
func (g *Generator) Generate(ctx context.Context) (Manifest, error) {
	if err := os.MkdirAll(g.cfg.Dir, directoryPermission); err != nil {
		return Manifest{}, fmt.Errorf("cannot create output dir: %w", err)
	}

	entities := g.makeEntities()
	detectors := g.makeDetectors()

	// Sibling detectors (2k, 2k+1) share hits with probability Overlap,
	// independent detectors draw their own.
	hits := make([][]bool, len(detectors))
	for i := range detectors {
		hits[i] = make([]bool, len(entities))
		if i%2 == 1 {
			for e, hit := range hits[i-1] {
				if hit && g.rng.Float64() < g.cfg.Overlap {
					hits[i][e] = true
				}
			}
			continue
		}
		for e := range entities {
			if g.rng.Float64() < defaultHitRate {
				hits[i][e] = true
			}
		}
	}

	manifest := Manifest{
		RegistryPath: filepath.Join(g.cfg.Dir, "detector_registry.yaml"),
		Detectors:    detectors,
	}
	for _, p := range entities {
		manifest.Entities = append(manifest.Entities, p.id)
	}

	for i, det := range detectors {
		count, err := g.writeStream(det, entities, hits[i])
		if err != nil {
			return Manifest{}, err
		}
		manifest.Detections += count
		manifest.Detectors[i].DetectionCount = count
	}

	if err := g.writeRegistry(manifest.RegistryPath, detectors); err != nil {
		return Manifest{}, err
	}

	g.logger.Info(ctx, "synthetic detector data generated",
		logger.String("dir", g.cfg.Dir),
		logger.Int("detectors", len(detectors)),
		logger.Int("entities", len(entities)),
		logger.Int("detections", manifest.Detections),
	)
	return manifest, nil
}

func (g *Generator) makeEntities() []entityProfile {
	entities := make([]entityProfile, g.cfg.Entities)
	for i := range entities {
		var base entityProfile
		if g.rng.Float64() < 0.5 {
			base = targetProfiles[g.rng.Intn(len(targetProfiles))]
		} else {
			base = foreignProfiles[g.rng.Intn(len(foreignProfiles))]
		}
		base.id = fmt.Sprintf("%s %s", base.name, shortID(g.rng))
		entities[i] = base
	}
	return entities
}

func (g *Generator) makeDetectors() []model.Detector {
	detectors := make([]model.Detector, g.cfg.Detectors)
	for i := range detectors {
		tier := model.Tier(i%3 + 1)
		id := fmt.Sprintf("synthetic_detector_%02d", i+1)
		detectors[i] = model.Detector{
			ID:          id,
			Version:     "1.0.0",
			Description: fmt.Sprintf("synthetic stream %d (tier %d)", i+1, tier),
			OutputFile:  filepath.Join(g.cfg.Dir, id+".ndjson"),
			Tier:        tier,
			KeyFields:   []string{"country", "city", "name"},
		}
	}
	return detectors
}

func (g *Generator) writeStream(det model.Detector, entities []entityProfile, hits []bool) (int, error) {
	f, err := os.OpenFile(det.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return 0, fmt.Errorf("cannot create detector stream: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	count := 0
	for e, hit := range hits {
		if !hit {
			continue
		}
		p := entities[e]
		line := map[string]any{
			"entity_id":    p.id,
			"detection_id": uuid.New().String(),
			"country":      p.country,
			"city":         p.city,
			"name":         p.name,
		}
		if err := enc.Encode(line); err != nil {
			return 0, fmt.Errorf("cannot write detection line: %w", err)
		}
		count++
	}
	return count, nil
}

func (g *Generator) writeRegistry(path string, detectors []model.Detector) error {
	entries := make([]registry.Entry, len(detectors))
	for i, det := range detectors {
		entries[i] = registry.Entry{
			ID:               det.ID,
			Version:          det.Version,
			Description:      det.Description,
			OutputFile:       filepath.Base(det.OutputFile),
			Tier:             int(det.Tier),
			KeyFields:        det.KeyFields,
			IdentifierFields: []string{"entity_id"},
		}
	}
	return registry.Write(path, entries)
}

func shortID(rng *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}
