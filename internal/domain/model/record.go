// Package model contains domain models passed between layers.
package model

import "strings"

// DataQualityFlag classifies how strong, and in which direction, a single
// record's evidence is. NO_DATA is explicit so that absence of evidence is
// never confused with evidence of absence.
type DataQualityFlag string

const (
	FlagNoData            DataQualityFlag = "NO_DATA"
	FlagLowData           DataQualityFlag = "LOW_DATA"
	FlagMixed             DataQualityFlag = "MIXED"
	FlagConfirmedPositive DataQualityFlag = "CONFIRMED_POSITIVE"
	FlagConfirmedNegative DataQualityFlag = "CONFIRMED_NEGATIVE"
)

// Provenance identifies where a record came from.
type Provenance struct {
	DetectorID string `json:"detector_id"`
	File       string `json:"file"`
	Line       int    `json:"line"`
}

// Record is one observation from one detector about one candidate entity.
// EntityID is assigned at ingestion, already normalized, and never mutated;
// a Record is read-only once created.
type Record struct {
	EntityID   string            `json:"entity_id"`
	Fields     map[string]string `json:"fields"`
	Provenance Provenance        `json:"provenance"`
}

// NormalizeEntityID canonicalizes a raw identifier: trim and lowercase.
// All matrix keys and record entity IDs pass through here exactly once.
func NormalizeEntityID(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SignalKind identifies what matched during assessment.
type SignalKind string

const (
	SignalCountryCode  SignalKind = "country_code"
	SignalCity         SignalKind = "city"
	SignalNameFragment SignalKind = "name_fragment"
	SignalScript       SignalKind = "script"
	SignalLegalSuffix  SignalKind = "legal_suffix"
)

// Signal is one matched-keyword piece of evidence. The assessor's rationale
// is reproducible from these alone.
type Signal struct {
	Kind  SignalKind `json:"kind"`
	Field string     `json:"field"`
	Match string     `json:"match"`
}

// QualityAssessment is the assessor's verdict on one Record. Created once,
// immutable. DetectorID and Tier carry provenance into fusion.
type QualityAssessment struct {
	Flag            DataQualityFlag `json:"data_quality_flag"`
	FieldsWithData  int             `json:"fields_with_data_count"`
	PositiveSignals []Signal        `json:"positive_signals"`
	NegativeSignals []Signal        `json:"negative_signals"`
	Confidence      float64         `json:"confidence"`
	Rationale       string          `json:"detection_rationale"`

	DetectorID string `json:"detector_id,omitempty"`
	Tier       Tier   `json:"tier,omitempty"`
}

// Detector is a named, versioned evidence source registered once; its
// identity is stable across runs.
type Detector struct {
	ID             string   `json:"detector_id"`
	Version        string   `json:"version"`
	Description    string   `json:"description"`
	OutputFile     string   `json:"output_file"`
	Tier           Tier     `json:"tier"`
	KeyFields      []string `json:"key_fields,omitempty"`
	IdentifierKeys []string `json:"identifier_fields,omitempty"`
	DetectionCount int      `json:"detection_count"`
}
