// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Indicator names a statistical measure carried by an observation.
type Indicator string

const (
	// IndicatorAccessPct is the percentage of population with electricity access.
	IndicatorAccessPct Indicator = "ELECTRICITY_ACCESS_PCT"

	// IndicatorPopulation is the total population count.
	IndicatorPopulation Indicator = "POPULATION"

	// IndicatorPeopleWithout is the count of people without electricity access.
	IndicatorPeopleWithout Indicator = "PEOPLE_WITHOUT_ELECTRICITY"
)

// Valid reports whether the indicator is one of the known measures.
func (i Indicator) Valid() bool {
	switch i {
	case IndicatorAccessPct, IndicatorPopulation, IndicatorPeopleWithout:
		return true
	}
	return false
}

// IsPercent reports whether the indicator's values are percentages in [0, 100].
func (i Indicator) IsPercent() bool {
	return i == IndicatorAccessPct
}

// RawRecord is one row read from a source file before normalization.
// Fields carries the row's cells keyed by header name; no shape is
// guaranteed beyond what the source emitted.
type RawRecord struct {
	// SourceID identifies the source configuration the row came from.
	SourceID string

	// Row is the 1-based row number in the source file, used in warnings.
	Row int

	// Fields maps header name to cell value as read from the file.
	Fields map[string]string
}

// RecordKey identifies one observation: a country, a year, and a measure.
type RecordKey struct {
	CountryCode string    `json:"country_code" yaml:"country_code"`
	Year        int       `json:"year" yaml:"year"`
	Indicator   Indicator `json:"indicator" yaml:"indicator"`
}

// CanonicalRecord is one normalized observation in the canonical schema.
type CanonicalRecord struct {
	// CountryCode is an ISO-3166 alpha-3 code (e.g. "RWA").
	CountryCode string `json:"country_code" yaml:"country_code"`

	// Year is the observation year, within [1990, current year].
	Year int `json:"year" yaml:"year"`

	// Indicator names the measure this value belongs to.
	Indicator Indicator `json:"indicator" yaml:"indicator"`

	// Value is the observation value. Percent indicators are in [0, 100].
	Value float64 `json:"value" yaml:"value"`

	// SourceID identifies the source that reported the value.
	SourceID string `json:"source_id" yaml:"source_id"`
}

// Key returns the grouping key for reconciliation.
func (r CanonicalRecord) Key() RecordKey {
	return RecordKey{CountryCode: r.CountryCode, Year: r.Year, Indicator: r.Indicator}
}

// YearValue is one point in a per-country time series.
type YearValue struct {
	Year  int     `json:"year" yaml:"year"`
	Value float64 `json:"value" yaml:"value"`
}

// CountryValue is one entry in a ranking.
type CountryValue struct {
	CountryCode string  `json:"country_code" yaml:"country_code"`
	Value       float64 `json:"value" yaml:"value"`
}

// RegionValue is one entry in a regional comparison.
type RegionValue struct {
	Region string  `json:"region" yaml:"region"`
	Value  float64 `json:"value" yaml:"value"`
}

// CountryDelta records a country's change in an indicator between two years.
type CountryDelta struct {
	CountryCode string  `json:"country_code" yaml:"country_code"`
	From        float64 `json:"from" yaml:"from"`
	To          float64 `json:"to" yaml:"to"`
	Delta       float64 `json:"delta" yaml:"delta"`
}
