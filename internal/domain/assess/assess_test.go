package assess_test

import (
	"testing"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/assess"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var keyFields = []string{"country", "city", "name", "address"}

func TestAssessNoData(t *testing.T) {
	Convey("Given a record with zero non-null fields", t, func() {
		a := assess.New()
		rec := model.Record{
			EntityID: "acme",
			Fields: map[string]string{
				"country": "",
				"city":    `\N`,
				"name":    "Unknown",
				"address": "   ",
			},
		}

		Convey("When assessing it", func() {
			out := a.Assess(rec, keyFields)

			Convey("Then the flag is NO_DATA with zero confidence and empty signals", func() {
				So(out.Flag, ShouldEqual, model.FlagNoData)
				So(out.Confidence, ShouldEqual, 0.0)
				So(out.FieldsWithData, ShouldEqual, 0)
				So(out.PositiveSignals, ShouldBeEmpty)
				So(out.NegativeSignals, ShouldBeEmpty)
			})
		})
	})
}

func TestAssessSingleCountryField(t *testing.T) {
	Convey("Given a record with country=CN and all other fields null", t, func() {
		a := assess.New()
		rec := model.Record{
			EntityID: "acme",
			Fields:   map[string]string{"country": "CN"},
		}

		Convey("When assessing it", func() {
			out := a.Assess(rec, keyFields)

			Convey("Then it is CONFIRMED_POSITIVE on one field", func() {
				So(out.Flag, ShouldEqual, model.FlagConfirmedPositive)
				So(out.FieldsWithData, ShouldEqual, 1)
				So(len(out.PositiveSignals), ShouldEqual, 1)
				So(out.PositiveSignals[0].Kind, ShouldEqual, model.SignalCountryCode)
			})

			Convey("And its confidence is lower than a fully corroborated record", func() {
				full := model.Record{
					EntityID: "acme",
					Fields: map[string]string{
						"country": "CN",
						"city":    "Shenzhen",
						"name":    "Huawei Technologies",
					},
				}
				corroborated := a.Assess(full, keyFields)
				So(corroborated.Flag, ShouldEqual, model.FlagConfirmedPositive)
				So(corroborated.Confidence, ShouldBeGreaterThan, out.Confidence)
				So(corroborated.Confidence, ShouldBeLessThanOrEqualTo, 1.0)
			})
		})
	})
}

func TestAssessNegative(t *testing.T) {
	Convey("Given a record with only foreign-jurisdiction indicators", t, func() {
		a := assess.New()
		rec := model.Record{
			EntityID: "widget co",
			Fields: map[string]string{
				"country": "DE",
				"name":    "Widget GmbH",
			},
		}

		Convey("When assessing it", func() {
			out := a.Assess(rec, keyFields)

			Convey("Then it is CONFIRMED_NEGATIVE with both signal kinds recorded", func() {
				So(out.Flag, ShouldEqual, model.FlagConfirmedNegative)
				So(out.PositiveSignals, ShouldBeEmpty)
				So(len(out.NegativeSignals), ShouldBeGreaterThanOrEqualTo, 2)
				So(out.Confidence, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestAssessMixedAndLowData(t *testing.T) {
	Convey("Given the assessor", t, func() {
		a := assess.New()

		Convey("When a record carries both positive and negative signals", func() {
			rec := model.Record{
				EntityID: "joint venture",
				Fields: map[string]string{
					"country": "DE",
					"address": "Beijing office",
				},
			}
			out := a.Assess(rec, keyFields)

			Convey("Then it is MIXED with lowered confidence", func() {
				So(out.Flag, ShouldEqual, model.FlagMixed)
				So(out.Confidence, ShouldBeLessThan, 0.5)
				So(out.PositiveSignals, ShouldNotBeEmpty)
				So(out.NegativeSignals, ShouldNotBeEmpty)
			})
		})

		Convey("When a record has data but no jurisdiction signals", func() {
			rec := model.Record{
				EntityID: "bland co",
				Fields:   map[string]string{"name": "Bland Trading Company"},
			}
			out := a.Assess(rec, keyFields)

			Convey("Then it is LOW_DATA", func() {
				So(out.Flag, ShouldEqual, model.FlagLowData)
				So(out.FieldsWithData, ShouldEqual, 1)
				So(out.Confidence, ShouldBeLessThan, 0.3)
			})
		})
	})
}

func TestAssessScriptSignal(t *testing.T) {
	Convey("Given a record whose name is written in Han script", t, func() {
		a := assess.New()
		rec := model.Record{
			EntityID: "hua ke",
			Fields:   map[string]string{"name": "华为技术有限公司"},
		}

		Convey("When assessing it", func() {
			out := a.Assess(rec, keyFields)

			Convey("Then the script signal fires and classifies positive", func() {
				So(out.Flag, ShouldEqual, model.FlagConfirmedPositive)
				found := false
				for _, s := range out.PositiveSignals {
					if s.Kind == model.SignalScript {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestAssessDeterminism(t *testing.T) {
	Convey("Given one record assessed many times", t, func() {
		a := assess.New()
		rec := model.Record{
			EntityID: "acme",
			Fields: map[string]string{
				"country": "CN",
				"city":    "Wuhan",
				"name":    "Acme 材料 Research GmbH",
				"address": "No. 1 Road, Wuhan",
			},
		}

		first := a.Assess(rec, keyFields)

		Convey("Then every assessment is identical", func() {
			for i := 0; i < 50; i++ {
				again := a.Assess(rec, keyFields)
				So(again.Flag, ShouldEqual, first.Flag)
				So(again.Confidence, ShouldEqual, first.Confidence)
				So(again.Rationale, ShouldEqual, first.Rationale)
				So(len(again.PositiveSignals), ShouldEqual, len(first.PositiveSignals))
				So(len(again.NegativeSignals), ShouldEqual, len(first.NegativeSignals))
			}
		})
	})
}

func TestRationaleReproducible(t *testing.T) {
	Convey("Given a positive classification", t, func() {
		a := assess.New()
		rec := model.Record{
			EntityID: "acme",
			Fields:   map[string]string{"country": "CN"},
		}
		out := a.Assess(rec, keyFields)

		Convey("Then the rationale names the driving signal", func() {
			So(out.Rationale, ShouldContainSubstring, "country_code")
			So(out.Rationale, ShouldContainSubstring, `"cn"`)
			So(out.Rationale, ShouldContainSubstring, "country")
		})
	})
}

func TestCustomWeightsAndSignals(t *testing.T) {
	Convey("Given an assessor with custom weighting", t, func() {
		w := assess.DefaultWeights()
		w.CountryCode = 0.9
		w.Cap = 0.9
		a := assess.New(assess.WithWeights(w))

		Convey("When assessing a country-code-only record", func() {
			out := a.Assess(model.Record{
				EntityID: "acme",
				Fields:   map[string]string{"country": "CN"},
			}, keyFields)

			Convey("Then confidence follows the configured base strength", func() {
				So(out.Confidence, ShouldEqual, 0.9)
			})
		})
	})

	Convey("Given an assessor with a custom signal set", t, func() {
		a := assess.New(assess.WithSignalSet(assess.SignalSet{
			CountryCodes: []string{"xx"},
		}))

		Convey("Then default terms no longer match", func() {
			out := a.Assess(model.Record{
				EntityID: "acme",
				Fields:   map[string]string{"country": "CN"},
			}, keyFields)
			So(out.Flag, ShouldEqual, model.FlagLowData)
		})
	})
}
