// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/energyatlas/accessdb/internal/normalize"
	"github.com/energyatlas/accessdb/pkg/types"
)

// sourceResult carries one source's normalized output back to the
// collecting goroutine.
type sourceResult struct {
	index   int
	records []types.CanonicalRecord
	report  types.SourceReport
	err     error
}

// Collect parses and normalizes every declared source and returns the
// combined normalized records with per-source reports. Sources are
// independent until reconciliation, so each runs in its own goroutine;
// the first fatal error aborts the run. Progress lines go to w.
func Collect(ctx context.Context, sources []types.SourceConfig, resolver *normalize.Resolver, w io.Writer) ([]types.CanonicalRecord, []types.SourceReport, error) {
	results := make(chan sourceResult, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(index int, cfg types.SourceConfig) {
			defer wg.Done()
			recs, report, err := collectOne(ctx, cfg, resolver)
			results <- sourceResult{index: index, records: recs, report: report, err: err}
		}(i, src)
	}
	wg.Wait()
	close(results)

	collected := make([]sourceResult, 0, len(sources))
	for res := range results {
		if res.err != nil {
			return nil, nil, res.err
		}
		collected = append(collected, res)
	}

	// Declaration order, not goroutine completion order, so repeated
	// runs over the same inputs are byte-identical.
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	var (
		records []types.CanonicalRecord
		reports []types.SourceReport
	)
	for _, res := range collected {
		fmt.Fprintf(w, "source %-20s parsed %6d  normalized %6d  dropped %4d\n",
			res.report.SourceID, res.report.Parsed, res.report.Normalized, res.report.Dropped)
		records = append(records, res.records...)
		reports = append(reports, res.report)
	}
	return records, reports, nil
}

// collectOne runs parse + normalize for a single source.
func collectOne(ctx context.Context, cfg types.SourceConfig, resolver *normalize.Resolver) ([]types.CanonicalRecord, types.SourceReport, error) {
	parser := NewParser(cfg)
	header, raws, rows, err := parser.Parse(ctx)
	if err != nil {
		return nil, types.SourceReport{}, err
	}

	norm := normalize.NewNormalizer(cfg, resolver)
	if err := norm.CheckHeader(header); err != nil {
		return nil, types.SourceReport{}, err
	}

	records := make([]types.CanonicalRecord, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := norm.Normalize(raw); ok {
			records = append(records, rec)
		}
	}
	report := norm.Report(len(raws))
	report.Rows = rows
	return records, report, nil
}
