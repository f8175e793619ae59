package assess

import (
	"strings"
	"unicode"
)

// SignalSet holds the keyword lists scanned during assessment. Positive terms
// indicate the target jurisdiction; negative terms are explicit indicators of
// another jurisdiction. All terms are stored lowercase.
type SignalSet struct {
	CountryCodes  []string `koanf:"country_codes"`  // target-jurisdiction country codes and names
	Cities        []string `koanf:"cities"`         // target-jurisdiction city names
	NameFragments []string `koanf:"name_fragments"` // known entity-name fragments

	ForeignCountryCodes  []string `koanf:"foreign_country_codes"`  // non-target country codes and names
	ForeignLegalSuffixes []string `koanf:"foreign_legal_suffixes"` // legal-entity suffixes of other countries
}

// DefaultSignalSet returns the built-in keyword lists for a China-nexus
// screening run. Deployments tune these through configuration; the exact
// lists are an open calibration question, not a constant of the design.
func DefaultSignalSet() SignalSet {
	return SignalSet{
		CountryCodes: []string{
			"cn", "chn", "china", "prc", "people's republic of china",
			"hong kong", "hk", "macau",
		},
		Cities: []string{
			"beijing", "shanghai", "shenzhen", "guangzhou", "wuhan",
			"chengdu", "hangzhou", "nanjing", "tianjin", "xian", "harbin",
			"hefei", "chongqing", "suzhou",
		},
		NameFragments: []string{
			"tsinghua", "academy of sciences", "huawei", "zte", "norinco",
			"sinopec", "avic", "cetc", "casic", "beihang",
		},
		ForeignCountryCodes: []string{
			"us", "usa", "united states", "de", "germany", "fr", "france",
			"jp", "japan", "kr", "south korea", "gb", "united kingdom",
			"tw", "taiwan",
		},
		ForeignLegalSuffixes: []string{
			"gmbh", "llc", "sarl", "s.p.a", "b.v.", "kabushiki kaisha",
			"k.k.", "pte ltd", "pty ltd",
		},
	}
}

// normalizeText lowercases s and flattens punctuation to spaces so that
// multi-word terms can be matched on token boundaries.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}

// containsToken matches term against text on whole-token boundaries:
// "cn" matches "Shenzhen, CN" but not "ACN Holdings". normalizeText pads
// both ends with spaces, so a padded substring check is a boundary check.
func containsToken(text, term string) bool {
	return strings.Contains(normalizeText(text), normalizeText(term))
}

// containsFragment matches term as a plain case-insensitive substring,
// used for entity-name fragments where boundaries are unreliable.
func containsFragment(text, term string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(term))
}

// hasCJK reports whether s contains at least one Han-script rune.
func hasCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
