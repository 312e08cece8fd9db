// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps source-specific raw rows onto the canonical
// observation schema: ISO country code, year, indicator, value, source.
// Bad rows are dropped with warnings; only a mapping configuration that
// matches nothing in the source is fatal.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/energyatlas/accessdb/pkg/types"
)

// MinYear is the earliest observation year accepted into the store.
const MinYear = 1990

// SchemaMismatchError reports a mapping configuration that references a
// column absent from the source header. Every row of such a source would
// fail identically, so this aborts the run.
type SchemaMismatchError struct {
	SourceID string
	Column   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("source %s: mapped column %q not present in source header", e.SourceID, e.Column)
}

// Normalizer converts RawRecords from one source into CanonicalRecords.
type Normalizer struct {
	cfg      types.SourceConfig
	resolver *Resolver
	maxYear  int

	warnings []types.Warning
	emitted  int
}

// NewNormalizer builds a Normalizer for one source. The year upper bound
// is fixed at construction so a single run applies a single bound.
func NewNormalizer(cfg types.SourceConfig, resolver *Resolver) *Normalizer {
	return &Normalizer{
		cfg:      cfg,
		resolver: resolver,
		maxYear:  time.Now().Year(),
	}
}

// CheckHeader validates the column map against the source header before
// any rows are normalized. A mapped column missing from the header is a
// configuration bug and fatal for the whole run.
func (n *Normalizer) CheckHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	required := []string{n.cfg.Columns.Country}
	if n.cfg.Layout != types.LayoutWide {
		required = append(required, n.cfg.Columns.Year, n.cfg.Columns.Value)
	}
	for _, col := range required {
		if col != "" && !present[col] {
			return &SchemaMismatchError{SourceID: n.cfg.ID, Column: col}
		}
	}
	return nil
}

// Normalize produces zero or one CanonicalRecord from a raw row. Rows
// that cannot be normalized are dropped with a warning; ok reports
// whether a record was emitted.
func (n *Normalizer) Normalize(raw types.RawRecord) (rec types.CanonicalRecord, ok bool) {
	rawCountry, found := raw.Fields[n.cfg.Columns.Country]
	if !found || strings.TrimSpace(rawCountry) == "" {
		n.warn(types.WarnMalformedValue, raw.Row, "empty country field")
		return rec, false
	}
	rawCountry = strings.TrimSpace(rawCountry)

	if n.cfg.SkipAggregates && n.cfg.CountryScheme == types.SchemeName && n.resolver.IsAggregate(rawCountry) {
		n.warn(types.WarnAggregateEntity, raw.Row, rawCountry)
		return rec, false
	}

	var code string
	switch n.cfg.CountryScheme {
	case types.SchemeISO3:
		code, found = n.resolver.ResolveCode(rawCountry)
	default:
		code, found = n.resolver.ResolveName(rawCountry)
	}
	if !found {
		n.warn(types.WarnUnmappedCountry, raw.Row, rawCountry)
		return rec, false
	}

	year, err := n.year(raw)
	if err != nil {
		n.warn(types.WarnMalformedValue, raw.Row, err.Error())
		return rec, false
	}
	if year < MinYear || year > n.maxYear {
		n.warn(types.WarnOutOfRange, raw.Row, fmt.Sprintf("year %d outside [%d, %d]", year, MinYear, n.maxYear))
		return rec, false
	}

	value, err := n.value(raw)
	if err != nil {
		n.warn(types.WarnMalformedValue, raw.Row, err.Error())
		return rec, false
	}

	if n.cfg.Unit == types.UnitRatio {
		value *= 100
	}
	if value < 0 {
		n.warn(types.WarnOutOfRange, raw.Row, fmt.Sprintf("negative value %g", value))
		return rec, false
	}
	if n.cfg.Indicator.IsPercent() && value > 100 {
		n.warn(types.WarnOutOfRange, raw.Row, fmt.Sprintf("percent value %g above 100", value))
		return rec, false
	}

	n.emitted++
	return types.CanonicalRecord{
		CountryCode: code,
		Year:        year,
		Indicator:   n.cfg.Indicator,
		Value:       value,
		SourceID:    n.cfg.ID,
	}, true
}

// Report returns the per-source summary accumulated so far.
func (n *Normalizer) Report(parsed int) types.SourceReport {
	return types.SourceReport{
		SourceID:   n.cfg.ID,
		Parsed:     parsed,
		Normalized: n.emitted,
		Dropped:    parsed - n.emitted,
		Warnings:   n.warnings,
	}
}

func (n *Normalizer) warn(kind types.WarningKind, row int, detail string) {
	n.warnings = append(n.warnings, types.Warning{
		Kind:     kind,
		SourceID: n.cfg.ID,
		Row:      row,
		Detail:   detail,
	})
}

// year reads the observation year. Wide-layout parsers store the year
// column header under the reserved YearKey.
func (n *Normalizer) year(raw types.RawRecord) (int, error) {
	col := n.cfg.Columns.Year
	if n.cfg.Layout == types.LayoutWide {
		col = YearKey
	}
	s, ok := raw.Fields[col]
	if !ok || strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("missing year field %q", col)
	}
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unparseable year %q", s)
	}
	return year, nil
}

// value reads the observation value. Wide-layout parsers store the cell
// under the reserved ValueKey.
func (n *Normalizer) value(raw types.RawRecord) (float64, error) {
	col := n.cfg.Columns.Value
	if n.cfg.Layout == types.LayoutWide {
		col = ValueKey
	}
	s, ok := raw.Fields[col]
	if !ok || strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("missing value field %q", col)
	}
	// Some exports format counts with thousands separators.
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable value %q", s)
	}
	return v, nil
}

// Reserved field keys used by wide-layout parsers when exploding a
// year-per-column row into per-year raw records. The keys contain a NUL
// so they can never collide with a real CSV header.
const (
	YearKey  = "\x00year"
	ValueKey = "\x00value"
)
