// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/energyatlas/accessdb/pkg/types"
)

// ErrStoreEmpty is returned by queries when no ingestion run has ever
// committed. Missing individual data points are absence, not errors.
var ErrStoreEmpty = errors.New("store has never been populated")

// populated reports whether at least one run has committed.
func (s *Store) populated(ctx context.Context) error {
	var runs int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs`).Scan(&runs); err != nil {
		return fmt.Errorf("checking run history: %w", err)
	}
	if runs == 0 {
		return ErrStoreEmpty
	}
	return nil
}

// Trend returns a country's time series for one indicator, ascending by
// year. A country with no observations yields an empty series.
func (s *Store) Trend(ctx context.Context, countryCode string, indicator types.Indicator) ([]types.YearValue, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT year, value FROM observations
		 WHERE country_code = ? AND indicator = ?
		 ORDER BY year ASC`,
		countryCode, string(indicator),
	)
	if err != nil {
		return nil, fmt.Errorf("querying trend: %w", err)
	}
	defer rows.Close()

	var out []types.YearValue
	for rows.Next() {
		var yv types.YearValue
		if err := rows.Scan(&yv.Year, &yv.Value); err != nil {
			return nil, fmt.Errorf("scanning trend row: %w", err)
		}
		out = append(out, yv)
	}
	return out, rows.Err()
}

// Compare returns one indicator's value per requested country for a
// year. Countries with no observation for that year are omitted, never
// zero-filled.
func (s *Store) Compare(ctx context.Context, countryCodes []string, year int, indicator types.Indicator) (map[string]float64, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}
	if len(countryCodes) == 0 {
		return map[string]float64{}, nil
	}

	placeholders := strings.Repeat("?,", len(countryCodes))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(countryCodes)+2)
	for _, c := range countryCodes {
		args = append(args, c)
	}
	args = append(args, year, string(indicator))

	rows, err := s.db.QueryContext(ctx,
		`SELECT country_code, value FROM observations
		 WHERE country_code IN (`+placeholders+`) AND year = ? AND indicator = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying comparison: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var code string
		var value float64
		if err := rows.Scan(&code, &value); err != nil {
			return nil, fmt.Errorf("scanning comparison row: %w", err)
		}
		out[code] = value
	}
	return out, rows.Err()
}

// Rank returns the top-N countries by an indicator's value for a year,
// descending, ties broken by country code ascending.
func (s *Store) Rank(ctx context.Context, indicator types.Indicator, year, topN int) ([]types.CountryValue, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT country_code, value FROM observations
		 WHERE indicator = ? AND year = ?
		 ORDER BY value DESC, country_code ASC
		 LIMIT ?`,
		string(indicator), year, topN,
	)
	if err != nil {
		return nil, fmt.Errorf("querying ranking: %w", err)
	}
	defer rows.Close()

	var out []types.CountryValue
	for rows.Next() {
		var cv types.CountryValue
		if err := rows.Scan(&cv.CountryCode, &cv.Value); err != nil {
			return nil, fmt.Errorf("scanning ranking row: %w", err)
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// Regional returns the mean indicator value per region for a year,
// descending by value. Regions come from the seeded country table.
func (s *Store) Regional(ctx context.Context, year int, indicator types.Indicator) ([]types.RegionValue, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.region, AVG(o.value) AS mean_value
		 FROM observations o
		 JOIN countries c ON o.country_code = c.code
		 WHERE o.indicator = ? AND o.year = ? AND c.region != ''
		 GROUP BY c.region
		 ORDER BY mean_value DESC, c.region ASC`,
		string(indicator), year,
	)
	if err != nil {
		return nil, fmt.Errorf("querying regional comparison: %w", err)
	}
	defer rows.Close()

	var out []types.RegionValue
	for rows.Next() {
		var rv types.RegionValue
		if err := rows.Scan(&rv.Region, &rv.Value); err != nil {
			return nil, fmt.Errorf("scanning regional row: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Unserved returns countries whose people-without-electricity count,
// summed across all stored years, exceeds threshold, descending by
// total. Aggregate entities are filtered out during normalization and
// never reach the store.
func (s *Store) Unserved(ctx context.Context, threshold float64) ([]types.CountryValue, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT country_code, SUM(value) AS total_without
		 FROM observations
		 WHERE indicator = ?
		 GROUP BY country_code
		 HAVING total_without > ?
		 ORDER BY total_without DESC, country_code ASC`,
		string(types.IndicatorPeopleWithout), threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("querying unserved totals: %w", err)
	}
	defer rows.Close()

	var out []types.CountryValue
	for rows.Next() {
		var cv types.CountryValue
		if err := rows.Scan(&cv.CountryCode, &cv.Value); err != nil {
			return nil, fmt.Errorf("scanning unserved row: %w", err)
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// GlobalTrend returns the worldwide total of people with electricity
// access per year, ascending. Each country contributes population minus
// people without access for years where both counts are stored; yearly
// totals are clamped at zero.
func (s *Store) GlobalTrend(ctx context.Context) ([]types.YearValue, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.year, SUM(p.value - w.value) AS total_with
		 FROM observations p
		 JOIN observations w
		   ON w.country_code = p.country_code AND w.year = p.year
		 WHERE p.indicator = ? AND w.indicator = ?
		 GROUP BY p.year
		 ORDER BY p.year ASC`,
		string(types.IndicatorPopulation), string(types.IndicatorPeopleWithout),
	)
	if err != nil {
		return nil, fmt.Errorf("querying global trend: %w", err)
	}
	defer rows.Close()

	var out []types.YearValue
	for rows.Next() {
		var yv types.YearValue
		if err := rows.Scan(&yv.Year, &yv.Value); err != nil {
			return nil, fmt.Errorf("scanning global trend row: %w", err)
		}
		if yv.Value < 0 {
			yv.Value = 0
		}
		out = append(out, yv)
	}
	return out, rows.Err()
}

// MostImproved returns the top-N countries by indicator gain between
// two years, descending by delta, ties by country code. Only countries
// with observations in both years qualify.
func (s *Store) MostImproved(ctx context.Context, indicator types.Indicator, fromYear, toYear, topN int) ([]types.CountryDelta, error) {
	if err := s.populated(ctx); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.country_code, a.value, b.value, b.value - a.value AS delta
		 FROM observations a
		 JOIN observations b
		   ON a.country_code = b.country_code AND a.indicator = b.indicator
		 WHERE a.indicator = ? AND a.year = ? AND b.year = ?
		 ORDER BY delta DESC, a.country_code ASC
		 LIMIT ?`,
		string(indicator), fromYear, toYear, topN,
	)
	if err != nil {
		return nil, fmt.Errorf("querying improvement: %w", err)
	}
	defer rows.Close()

	var out []types.CountryDelta
	for rows.Next() {
		var cd types.CountryDelta
		if err := rows.Scan(&cd.CountryCode, &cd.From, &cd.To, &cd.Delta); err != nil {
			return nil, fmt.Errorf("scanning improvement row: %w", err)
		}
		out = append(out, cd)
	}
	return out, rows.Err()
}
