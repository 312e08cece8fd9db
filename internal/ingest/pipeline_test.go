// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/energyatlas/accessdb/internal/normalize"
	"github.com/energyatlas/accessdb/pkg/types"
)

func TestCollectTwoSources(t *testing.T) {
	dir := t.TempDir()
	elecPath := writeFile(t, dir, "electricity.csv", electricityCSV)
	popPath := writeFile(t, dir, "population.csv", populationWideCSV)

	sources := []types.SourceConfig{longSource(elecPath), wideSource(popPath)}

	var out bytes.Buffer
	records, reports, err := Collect(context.Background(), sources, normalize.NewResolver(), &out)
	if err != nil {
		t.Fatal(err)
	}

	// 3 electricity rows + 5 populated wide cells.
	if len(records) != 8 {
		t.Fatalf("got %d records, want 8", len(records))
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports", len(reports))
	}

	// Reports follow declaration order regardless of goroutine timing.
	if reports[0].SourceID != "owid-electricity" || reports[1].SourceID != "wb-population" {
		t.Errorf("report order: %s, %s", reports[0].SourceID, reports[1].SourceID)
	}
	if reports[0].Normalized != 3 || reports[1].Normalized != 5 {
		t.Errorf("normalized counts: %d, %d", reports[0].Normalized, reports[1].Normalized)
	}

	// The wide source has 2 file rows but 5 candidate observations.
	if reports[1].Rows != 2 || reports[1].Parsed != 5 {
		t.Errorf("wide source rows/parsed = %d/%d, want 2/5", reports[1].Rows, reports[1].Parsed)
	}
	if reports[0].Rows != 3 || reports[0].Parsed != 3 {
		t.Errorf("long source rows/parsed = %d/%d, want 3/3", reports[0].Rows, reports[0].Parsed)
	}

	// Combined records also follow declaration order.
	if records[0].SourceID != "owid-electricity" {
		t.Errorf("first record from %s", records[0].SourceID)
	}
	if records[0].Indicator != types.IndicatorAccessPct {
		t.Errorf("first record indicator = %s", records[0].Indicator)
	}
}

func TestCollectIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	elecPath := writeFile(t, dir, "electricity.csv", electricityCSV)
	popPath := writeFile(t, dir, "population.csv", populationWideCSV)
	sources := []types.SourceConfig{longSource(elecPath), wideSource(popPath)}

	var out bytes.Buffer
	first, _, err := Collect(context.Background(), sources, normalize.NewResolver(), &out)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, _, err := Collect(context.Background(), sources, normalize.NewResolver(), &out)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("repeated collection should produce identical records")
		}
	}
}

func TestCollectFatalOnUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	elecPath := writeFile(t, dir, "electricity.csv", electricityCSV)
	sources := []types.SourceConfig{
		longSource(elecPath),
		wideSource(dir + "/missing.csv"),
	}

	var out bytes.Buffer
	_, _, err := Collect(context.Background(), sources, normalize.NewResolver(), &out)
	var unreadable *UnreadableSourceError
	if !errors.As(err, &unreadable) {
		t.Fatalf("error %T, want *UnreadableSourceError", err)
	}
}

func TestCollectFatalOnSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "electricity.csv", "Entity,Code,Year\nRwanda,RWA,2020\n")

	var out bytes.Buffer
	_, _, err := Collect(context.Background(), []types.SourceConfig{longSource(path)}, normalize.NewResolver(), &out)
	var mismatch *normalize.SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error %T, want *SchemaMismatchError", err)
	}
	if mismatch.Column != "Access" {
		t.Errorf("mismatch column = %q", mismatch.Column)
	}
}

func TestCollectWarningsSurvive(t *testing.T) {
	csv := "Entity,Code,Year,Access\nAtlantis,,2020,50\nRwanda,RWA,1970,10\nRwanda,RWA,2020,46.6\n"
	dir := t.TempDir()
	path := writeFile(t, dir, "electricity.csv", csv)

	var out bytes.Buffer
	records, reports, err := Collect(context.Background(), []types.SourceConfig{longSource(path)}, normalize.NewResolver(), &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if len(reports[0].Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(reports[0].Warnings))
	}
	kinds := map[types.WarningKind]bool{}
	for _, w := range reports[0].Warnings {
		kinds[w.Kind] = true
	}
	if !kinds[types.WarnUnmappedCountry] || !kinds[types.WarnOutOfRange] {
		t.Errorf("warning kinds = %v", kinds)
	}
}
