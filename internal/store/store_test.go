// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/energyatlas/accessdb/internal/normalize"
	"github.com/energyatlas/accessdb/internal/reconcile"
	"github.com/energyatlas/accessdb/pkg/types"
)

func testSetup(t *testing.T) *Store {
	t.Helper()
	cfg := types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "accessdb.db")}
	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCountries() [][3]string {
	return normalize.NewResolver().Countries()
}

func testReport() types.RunReport {
	now := time.Now()
	return types.RunReport{
		StartedAt:  now.Add(-time.Second),
		FinishedAt: now,
		Sources:    []types.SourceReport{{SourceID: "test", Parsed: 1, Normalized: 1}},
	}
}

// buildDataset reconciles records with a single rank-1 source per id.
func buildDataset(t *testing.T, records ...types.CanonicalRecord) *reconcile.Dataset {
	t.Helper()
	seen := map[string]bool{}
	var sources []types.SourceConfig
	for _, r := range records {
		if !seen[r.SourceID] {
			seen[r.SourceID] = true
			sources = append(sources, types.SourceConfig{ID: r.SourceID, Precedence: 1})
		}
	}
	ds, _ := reconcile.New(sources, types.IngestConfig{}).Reconcile(records)
	return ds
}

func accessRec(country string, year int, value float64) types.CanonicalRecord {
	return types.CanonicalRecord{
		CountryCode: country, Year: year,
		Indicator: types.IndicatorAccessPct, Value: value, SourceID: "test",
	}
}

func TestEmptyStore(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	if _, err := s.Trend(ctx, "RWA", types.IndicatorAccessPct); !errors.Is(err, ErrStoreEmpty) {
		t.Errorf("Trend error = %v, want ErrStoreEmpty", err)
	}
	if _, err := s.Compare(ctx, []string{"RWA"}, 2020, types.IndicatorAccessPct); !errors.Is(err, ErrStoreEmpty) {
		t.Errorf("Compare error = %v, want ErrStoreEmpty", err)
	}
	if _, err := s.Rank(ctx, types.IndicatorAccessPct, 2020, 10); !errors.Is(err, ErrStoreEmpty) {
		t.Errorf("Rank error = %v, want ErrStoreEmpty", err)
	}
	if _, err := s.Unserved(ctx, 1_000_000); !errors.Is(err, ErrStoreEmpty) {
		t.Errorf("Unserved error = %v, want ErrStoreEmpty", err)
	}
	if _, err := s.GlobalTrend(ctx); !errors.Is(err, ErrStoreEmpty) {
		t.Errorf("GlobalTrend error = %v, want ErrStoreEmpty", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		accessRec("RWA", 2019, 34.7),
		accessRec("RWA", 2020, 46.6),
	)
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	series, err := s.Trend(ctx, "RWA", types.IndicatorAccessPct)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.YearValue{{Year: 2019, Value: 34.7}, {Year: 2020, Value: 46.6}}
	if !reflect.DeepEqual(series, want) {
		t.Errorf("trend = %v, want %v", series, want)
	}

	// A country with no observations yields an empty series, not an error.
	series, err = s.Trend(ctx, "KEN", types.IndicatorAccessPct)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 0 {
		t.Errorf("unexpected series for absent country: %v", series)
	}
}

func TestReplaceIsIdempotent(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		accessRec("RWA", 2020, 46.6),
		accessRec("KEN", 2020, 71.4),
	)
	report := testReport()

	if err := s.Replace(ctx, ds, testCountries(), report); err != nil {
		t.Fatal(err)
	}
	first, err := s.Rank(ctx, types.IndicatorAccessPct, 2020, 10)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Replace(ctx, ds, testCountries(), report); err != nil {
		t.Fatal(err)
	}
	second, err := s.Rank(ctx, types.IndicatorAccessPct, 2020, 10)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ranking changed across identical runs: %v vs %v", first, second)
	}
}

func TestReplaceSwapsWholeDataset(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	old := buildDataset(t, accessRec("RWA", 2019, 34.7))
	if err := s.Replace(ctx, old, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	// The replacement dataset has no 2019 observation; it must disappear.
	next := buildDataset(t, accessRec("RWA", 2020, 46.6))
	if err := s.Replace(ctx, next, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	series, err := s.Trend(ctx, "RWA", types.IndicatorAccessPct)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.YearValue{{Year: 2020, Value: 46.6}}
	if !reflect.DeepEqual(series, want) {
		t.Errorf("trend = %v, want %v", series, want)
	}
}

func TestCompareOmitsAbsentCountries(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t, accessRec("RWA", 2020, 45.0))
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	values, err := s.Compare(ctx, []string{"RWA", "KEN"}, 2020, types.IndicatorAccessPct)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"RWA": 45.0}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("compare = %v, want %v (absent countries omitted, not zero-filled)", values, want)
	}
}

func TestRankOrderAndTies(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		accessRec("KEN", 2020, 71.4),
		accessRec("RWA", 2020, 46.6),
		accessRec("GHA", 2020, 85.9),
		accessRec("TZA", 2020, 46.6), // ties with RWA
		accessRec("UGA", 2020, 42.1),
	)
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	ranking, err := s.Rank(ctx, types.IndicatorAccessPct, 2020, 4)
	if err != nil {
		t.Fatal(err)
	}

	want := []types.CountryValue{
		{CountryCode: "GHA", Value: 85.9},
		{CountryCode: "KEN", Value: 71.4},
		{CountryCode: "RWA", Value: 46.6}, // tie broken by code ascending
		{CountryCode: "TZA", Value: 46.6},
	}
	if !reflect.DeepEqual(ranking, want) {
		t.Errorf("ranking = %v, want %v", ranking, want)
	}
}

func TestRegional(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		accessRec("RWA", 2020, 40.0),
		accessRec("KEN", 2020, 60.0),
		accessRec("FRA", 2020, 100.0),
	)
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	regions, err := s.Regional(ctx, 2020, types.IndicatorAccessPct)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.RegionValue{
		{Region: "Europe", Value: 100.0},
		{Region: "Africa", Value: 50.0},
	}
	if !reflect.DeepEqual(regions, want) {
		t.Errorf("regional = %v, want %v", regions, want)
	}
}

func TestMostImproved(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		accessRec("RWA", 1990, 2.3), accessRec("RWA", 2016, 29.4),
		accessRec("KEN", 1990, 7.2), accessRec("KEN", 2016, 56.0),
		accessRec("FRA", 1990, 100.0), accessRec("FRA", 2016, 100.0),
		accessRec("TZA", 2016, 32.8), // missing 1990: excluded
	)
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	deltas, err := s.MostImproved(ctx, types.IndicatorAccessPct, 1990, 2016, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas", len(deltas))
	}
	if deltas[0].CountryCode != "KEN" || deltas[1].CountryCode != "RWA" {
		t.Errorf("order = %s, %s", deltas[0].CountryCode, deltas[1].CountryCode)
	}
	if got := deltas[0].Delta; got < 48.7 || got > 48.9 {
		t.Errorf("KEN delta = %f", got)
	}
}

func countRec(country string, year int, ind types.Indicator, value float64) types.CanonicalRecord {
	return types.CanonicalRecord{
		CountryCode: country, Year: year,
		Indicator: ind, Value: value, SourceID: "test",
	}
}

func TestUnserved(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		countRec("NGA", 2019, types.IndicatorPeopleWithout, 85_000_000),
		countRec("NGA", 2020, types.IndicatorPeopleWithout, 90_000_000),
		countRec("KEN", 2020, types.IndicatorPeopleWithout, 12_000_000),
		countRec("RWA", 2020, types.IndicatorPeopleWithout, 900_000),
		// Access percentages never count toward unserved totals.
		accessRec("KEN", 2020, 71.4),
	)
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	totals, err := s.Unserved(ctx, 1_000_000)
	if err != nil {
		t.Fatal(err)
	}

	// NGA sums across years; RWA stays under the threshold.
	want := []types.CountryValue{
		{CountryCode: "NGA", Value: 175_000_000},
		{CountryCode: "KEN", Value: 12_000_000},
	}
	if !reflect.DeepEqual(totals, want) {
		t.Errorf("unserved = %v, want %v", totals, want)
	}
}

func TestGlobalTrend(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := buildDataset(t,
		countRec("KEN", 2019, types.IndicatorPopulation, 50_000_000),
		countRec("KEN", 2019, types.IndicatorPeopleWithout, 10_000_000),
		countRec("KEN", 2020, types.IndicatorPopulation, 51_000_000),
		countRec("KEN", 2020, types.IndicatorPeopleWithout, 9_000_000),
		countRec("RWA", 2019, types.IndicatorPopulation, 12_000_000),
		countRec("RWA", 2019, types.IndicatorPeopleWithout, 8_000_000),
		// RWA 2020 has no population; the pair is excluded, not zero-filled.
		countRec("RWA", 2020, types.IndicatorPeopleWithout, 7_000_000),
		// Inconsistent counts: the 2018 total clamps at zero.
		countRec("TUV", 2018, types.IndicatorPopulation, 10_000),
		countRec("TUV", 2018, types.IndicatorPeopleWithout, 20_000),
	)
	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	series, err := s.GlobalTrend(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := []types.YearValue{
		{Year: 2018, Value: 0},
		{Year: 2019, Value: 44_000_000},
		{Year: 2020, Value: 42_000_000},
	}
	if !reflect.DeepEqual(series, want) {
		t.Errorf("global trend = %v, want %v", series, want)
	}
}

func TestReplacePreservesFlags(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	ds := &reconcile.Dataset{Entries: map[types.RecordKey]reconcile.Entry{}}
	rec := accessRec("RWA", 2020, 45.0)
	ds.Entries[rec.Key()] = reconcile.Entry{CanonicalRecord: rec, Ambiguous: true, Outlier: true}

	if err := s.Replace(ctx, ds, testCountries(), testReport()); err != nil {
		t.Fatal(err)
	}

	var ambiguous, outlier int
	err := s.db.QueryRowContext(ctx,
		`SELECT ambiguous, outlier FROM observations WHERE country_code = 'RWA'`,
	).Scan(&ambiguous, &outlier)
	if err != nil {
		t.Fatal(err)
	}
	if ambiguous != 1 || outlier != 1 {
		t.Errorf("flags = (%d, %d), want (1, 1)", ambiguous, outlier)
	}
}
