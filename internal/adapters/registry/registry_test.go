package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/adapters/registry"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeRegistry(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "detector_registry.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidRegistry(t *testing.T) {
	Convey("Given a valid registry file", t, func() {
		path := writeRegistry(t, `
detectors:
  - id: procurement
    version: "2.1.0"
    description: "Procurement hits"
    output_file: out/procurement.ndjson
    tier: 1
    key_fields: [country, name]
    identifier_fields: [entity_id, vendor.name]
  - id: patents
    version: "1.0.0"
    output_file: /abs/patents.ndjson
    tier: 2
`)

		Convey("When loading", func() {
			detectors, err := registry.Load(context.Background(), path)
			So(err, ShouldBeNil)
			So(len(detectors), ShouldEqual, 2)

			Convey("Then fields map through and tiers parse", func() {
				So(detectors[0].ID, ShouldEqual, "procurement")
				So(detectors[0].Version, ShouldEqual, "2.1.0")
				So(detectors[0].Tier, ShouldEqual, model.TierAuthoritative)
				So(detectors[0].KeyFields, ShouldResemble, []string{"country", "name"})
				So(detectors[0].IdentifierKeys, ShouldResemble, []string{"entity_id", "vendor.name"})
			})

			Convey("Then an entry without key_fields gets the defaults", func() {
				So(detectors[1].KeyFields, ShouldResemble, registry.DefaultKeyFields)
			})

			Convey("Then relative output files resolve against the registry dir", func() {
				So(detectors[0].OutputFile, ShouldEqual, filepath.Join(filepath.Dir(path), "out/procurement.ndjson"))
				So(detectors[1].OutputFile, ShouldEqual, "/abs/patents.ndjson")
			})
		})
	})
}

func TestLoadMissingRegistry(t *testing.T) {
	Convey("Given no registry file on disk", t, func() {
		Convey("When loading", func() {
			_, err := registry.Load(context.Background(), "/nowhere/registry.yaml")

			Convey("Then the distinct not-found sentinel surfaces", func() {
				So(err, ShouldWrap, registry.ErrRegistryNotFound)
			})
		})
	})
}

func TestLoadInvalidRegistry(t *testing.T) {
	Convey("Given malformed registries", t, func() {
		cases := map[string]string{
			"empty detector list": `detectors: []`,
			"missing id": `
detectors:
  - output_file: x.ndjson
    tier: 1
`,
			"duplicate id": `
detectors:
  - id: a
    output_file: x.ndjson
    tier: 1
  - id: a
    output_file: y.ndjson
    tier: 2
`,
			"missing output file": `
detectors:
  - id: a
    tier: 1
`,
			"bad tier": `
detectors:
  - id: a
    output_file: x.ndjson
    tier: 9
`,
		}

		for name, body := range cases {
			Convey("When loading a registry with "+name, func() {
				path := writeRegistry(t, body)
				_, err := registry.Load(context.Background(), path)

				Convey("Then it fails with ErrInvalidRegistry", func() {
					So(err, ShouldWrap, registry.ErrInvalidRegistry)
				})
			})
		}
	})
}

func TestWriteExample(t *testing.T) {
	Convey("Given no registry yet", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "detector_registry.yaml")

		Convey("When emitting the example", func() {
			So(registry.WriteExample(path), ShouldBeNil)

			Convey("Then the example loads cleanly", func() {
				detectors, err := registry.Load(context.Background(), path)
				So(err, ShouldBeNil)
				So(len(detectors), ShouldEqual, 3)
				tiers := map[model.Tier]bool{}
				for _, d := range detectors {
					tiers[d.Tier] = true
				}
				So(len(tiers), ShouldEqual, 3)
			})
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Given a set of detector entries", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "detector_registry.yaml")
		entries := []registry.Entry{
			{
				ID:               "det_a",
				Version:          "2.1.0",
				Description:      "first detector",
				OutputFile:       "det_a.ndjson",
				Tier:             1,
				KeyFields:        []string{"country", "name"},
				IdentifierFields: []string{"entity_id", "vendor.name"},
			},
			{
				ID:         "det_b",
				OutputFile: "det_b.ndjson",
				Tier:       3,
			},
		}

		Convey("When writing and reloading them", func() {
			So(registry.Write(path, entries), ShouldBeNil)
			detectors, err := registry.Load(context.Background(), path)

			Convey("Then the declarations round-trip", func() {
				So(err, ShouldBeNil)
				So(detectors, ShouldHaveLength, 2)
				So(detectors[0].ID, ShouldEqual, "det_a")
				So(detectors[0].Version, ShouldEqual, "2.1.0")
				So(detectors[0].Tier, ShouldEqual, model.TierAuthoritative)
				So(detectors[0].OutputFile, ShouldEqual, filepath.Join(dir, "det_a.ndjson"))
				So(detectors[0].IdentifierKeys, ShouldResemble, []string{"entity_id", "vendor.name"})
				So(detectors[1].Tier, ShouldEqual, model.TierUnverified)
			})
		})
	})
}
