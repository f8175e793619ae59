// Package assess implements the per-record field/quality assessor.
//
// Assess is a pure function over one record's key fields: it counts usable
// data, scans every text field against the positive and negative signal
// sets, and classifies the record without ever fabricating a conclusion
// from absent data. Same input, same verdict — no clock, no randomness,
// no I/O.
package assess

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

// Default weighting constants. Signal ordering is a design constraint:
// a country-code match outranks a script match, which outranks a
// name-fragment match.
const (
	defaultCountryCodeStrength  = 0.70
	defaultCityStrength         = 0.65
	defaultScriptStrength       = 0.60
	defaultNameFragmentStrength = 0.50
	defaultLegalSuffixStrength  = 0.65

	defaultFieldBonus  = 0.05 // per additional key field with data
	defaultSignalBonus = 0.05 // per additional distinct signal
	defaultCap         = 0.95

	defaultMixedConfidence   = 0.30
	defaultLowDataConfidence = 0.10
)

// Weights maps signal kinds and corroboration to confidence. The exact
// values are calibration inputs, carried as configuration rather than
// hardcoded constants.
type Weights struct {
	CountryCode  float64 `koanf:"country_code"`
	City         float64 `koanf:"city"`
	Script       float64 `koanf:"script"`
	NameFragment float64 `koanf:"name_fragment"`
	LegalSuffix  float64 `koanf:"legal_suffix"`

	FieldBonus  float64 `koanf:"field_bonus"`
	SignalBonus float64 `koanf:"signal_bonus"`
	Cap         float64 `koanf:"cap"`

	MixedConfidence   float64 `koanf:"mixed_confidence"`
	LowDataConfidence float64 `koanf:"low_data_confidence"`
}

// DefaultWeights returns the built-in confidence weighting.
func DefaultWeights() Weights {
	return Weights{
		CountryCode:       defaultCountryCodeStrength,
		City:              defaultCityStrength,
		Script:            defaultScriptStrength,
		NameFragment:      defaultNameFragmentStrength,
		LegalSuffix:       defaultLegalSuffixStrength,
		FieldBonus:        defaultFieldBonus,
		SignalBonus:       defaultSignalBonus,
		Cap:               defaultCap,
		MixedConfidence:   defaultMixedConfidence,
		LowDataConfidence: defaultLowDataConfidence,
	}
}

// placeholderValues are treated as "no data" alongside empty strings.
var placeholderValues = map[string]struct{}{
	`\N`:      {},
	"Unknown": {},
}

// Option applies a configuration option to the Assessor.
type Option func(*Assessor)

// WithSignalSet replaces the keyword lists.
func WithSignalSet(set SignalSet) Option {
	return func(a *Assessor) {
		a.signals = set
	}
}

// WithWeights replaces the confidence weighting.
func WithWeights(w Weights) Option {
	return func(a *Assessor) {
		if w.Cap > 0 {
			a.weights = w
		}
	}
}

// Assessor classifies a single record's evidence about an entity.
type Assessor struct {
	signals SignalSet
	weights Weights
}

// New creates an Assessor with configuration options.
func New(opts ...Option) *Assessor {
	a := &Assessor{
		signals: DefaultSignalSet(),
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HasData reports whether value is non-empty, non-whitespace and not a
// known placeholder.
func HasData(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	_, placeholder := placeholderValues[trimmed]
	return !placeholder
}

// Assess classifies one record. keyFields is the ordered list of field
// names that are semantically meaningful for this record's source type;
// only those count toward fields_with_data, while the signal scan covers
// every available text field.
func (a *Assessor) Assess(rec model.Record, keyFields []string) model.QualityAssessment {
	fieldsWithData := 0
	for _, name := range keyFields {
		if HasData(rec.Fields[name]) {
			fieldsWithData++
		}
	}

	positive, negative := a.scan(rec)

	out := model.QualityAssessment{
		FieldsWithData:  fieldsWithData,
		PositiveSignals: positive,
		NegativeSignals: negative,
		DetectorID:      rec.Provenance.DetectorID,
	}

	switch {
	case fieldsWithData == 0:
		out.Flag = model.FlagNoData
		out.Confidence = 0
		out.Rationale = "no usable data in key fields"
	case len(positive) > 0 && len(negative) == 0:
		out.Flag = model.FlagConfirmedPositive
		out.Confidence = a.confidence(positive, fieldsWithData)
		out.Rationale = rationale("positive", positive, fieldsWithData)
	case len(negative) > 0 && len(positive) == 0:
		out.Flag = model.FlagConfirmedNegative
		out.Confidence = a.confidence(negative, fieldsWithData)
		out.Rationale = rationale("negative", negative, fieldsWithData)
	case len(positive) > 0 && len(negative) > 0:
		out.Flag = model.FlagMixed
		out.Confidence = a.weights.MixedConfidence
		out.Rationale = rationale("conflicting", append(append([]model.Signal{}, positive...), negative...), fieldsWithData)
	default:
		out.Flag = model.FlagLowData
		out.Confidence = a.weights.LowDataConfidence
		out.Rationale = fmt.Sprintf("no jurisdiction signals; %d key field(s) populated", fieldsWithData)
	}

	return out
}

// scan walks every field value against both signal sets. Signals are
// emitted in a stable order: field iteration follows keyFields-independent
// sorted field names so the output is deterministic.
func (a *Assessor) scan(rec model.Record) (positive, negative []model.Signal) {
	seen := make(map[model.Signal]struct{})
	add := func(dst *[]model.Signal, s model.Signal) {
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		*dst = append(*dst, s)
	}

	for _, name := range sortedFieldNames(rec.Fields) {
		value := rec.Fields[name]
		if !HasData(value) {
			continue
		}

		for _, term := range a.signals.CountryCodes {
			if containsToken(value, term) {
				add(&positive, model.Signal{Kind: model.SignalCountryCode, Field: name, Match: term})
			}
		}
		for _, term := range a.signals.Cities {
			if containsToken(value, term) {
				add(&positive, model.Signal{Kind: model.SignalCity, Field: name, Match: term})
			}
		}
		for _, term := range a.signals.NameFragments {
			if containsFragment(value, term) {
				add(&positive, model.Signal{Kind: model.SignalNameFragment, Field: name, Match: term})
			}
		}
		if hasCJK(value) {
			add(&positive, model.Signal{Kind: model.SignalScript, Field: name, Match: "cjk"})
		}

		for _, term := range a.signals.ForeignCountryCodes {
			if containsToken(value, term) {
				add(&negative, model.Signal{Kind: model.SignalCountryCode, Field: name, Match: term})
			}
		}
		for _, term := range a.signals.ForeignLegalSuffixes {
			if containsToken(value, term) {
				add(&negative, model.Signal{Kind: model.SignalLegalSuffix, Field: name, Match: term})
			}
		}
	}
	return positive, negative
}

// confidence scales the strongest signal by corroboration: more populated
// key fields and more distinct signals raise it, capped.
func (a *Assessor) confidence(signals []model.Signal, fieldsWithData int) float64 {
	base := 0.0
	for _, s := range signals {
		if strength := a.strength(s.Kind); strength > base {
			base = strength
		}
	}
	conf := base
	if fieldsWithData > 1 {
		conf += a.weights.FieldBonus * float64(fieldsWithData-1)
	}
	if len(signals) > 1 {
		conf += a.weights.SignalBonus * float64(len(signals)-1)
	}
	if conf > a.weights.Cap {
		conf = a.weights.Cap
	}
	return conf
}

func (a *Assessor) strength(kind model.SignalKind) float64 {
	switch kind {
	case model.SignalCountryCode:
		return a.weights.CountryCode
	case model.SignalCity:
		return a.weights.City
	case model.SignalScript:
		return a.weights.Script
	case model.SignalNameFragment:
		return a.weights.NameFragment
	case model.SignalLegalSuffix:
		return a.weights.LegalSuffix
	default:
		return 0
	}
}

// rationale renders the classification's driving signals. It is built only
// from the signal lists, never free text.
func rationale(direction string, signals []model.Signal, fieldsWithData int) string {
	parts := make([]string, 0, len(signals))
	for _, s := range signals {
		parts = append(parts, fmt.Sprintf("%s(%q) in %s", s.Kind, s.Match, s.Field))
	}
	return fmt.Sprintf("%s: %s; %d key field(s) populated", direction, strings.Join(parts, ", "), fieldsWithData)
}

func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
