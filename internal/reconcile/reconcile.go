// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile merges normalized records from all sources into one
// dataset with exactly one value per (country, year, indicator).
package reconcile

import (
	"math"
	"sort"

	"github.com/energyatlas/accessdb/pkg/types"
)

// Entry is one reconciled observation.
type Entry struct {
	types.CanonicalRecord

	// Ambiguous marks values produced by averaging equal-rank sources.
	Ambiguous bool

	// Outlier marks values deviating sharply from the previous year.
	Outlier bool
}

// Dataset is the reconciled output of one run, keyed by observation.
// Iteration order carries no meaning; consumers query by key.
type Dataset struct {
	Entries map[types.RecordKey]Entry
}

// Get returns the entry for a key, if present.
func (d *Dataset) Get(key types.RecordKey) (Entry, bool) {
	e, ok := d.Entries[key]
	return e, ok
}

// Len returns the number of reconciled observations.
func (d *Dataset) Len() int { return len(d.Entries) }

// Sorted returns the entries ordered by (country, year, indicator), for
// deterministic store writes and reports.
func (d *Dataset) Sorted() []Entry {
	out := make([]Entry, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CountryCode != b.CountryCode {
			return a.CountryCode < b.CountryCode
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Indicator < b.Indicator
	})
	return out
}

// Reconciler resolves conflicting observations across sources.
type Reconciler struct {
	precedence map[string]int
	ingestSeq  map[string]int
	cfg        types.IngestConfig
}

// New builds a Reconciler from the declared sources and run settings.
// Source declaration order defines ingest recency for the tie-break.
func New(sources []types.SourceConfig, cfg types.IngestConfig) *Reconciler {
	prec := make(map[string]int, len(sources))
	seq := make(map[string]int, len(sources))
	for i, s := range sources {
		prec[s.ID] = s.Precedence
		seq[s.ID] = i
	}
	if cfg.OutlierThreshold <= 0 {
		cfg.OutlierThreshold = 25.0
	}
	if cfg.OutlierFactor <= 0 {
		cfg.OutlierFactor = 2.0
	}
	return &Reconciler{precedence: prec, ingestSeq: seq, cfg: cfg}
}

// candidate tracks one source's claim on a key during grouping.
type candidate struct {
	rec  types.CanonicalRecord
	rank int
	seq  int // source ingest position; later wins among equal ranks
}

// Reconcile groups records by key and resolves each group: the source
// with the highest precedence rank wins (rank 1 outranks rank 2); equal
// ranks prefer the most recently ingested source; candidates tied on
// both (duplicate rows within one source) are averaged and marked
// ambiguous. The same records and configuration always produce the
// same dataset.
func (r *Reconciler) Reconcile(records []types.CanonicalRecord) (*Dataset, types.ReconcileStats) {
	groups := make(map[types.RecordKey][]candidate)
	for _, rec := range records {
		key := rec.Key()
		groups[key] = append(groups[key], candidate{
			rec:  rec,
			rank: r.precedence[rec.SourceID],
			seq:  r.ingestSeq[rec.SourceID],
		})
	}

	var stats types.ReconcileStats
	ds := &Dataset{Entries: make(map[types.RecordKey]Entry, len(groups))}

	for key, cands := range groups {
		if len(cands) > 1 {
			stats.Conflicts++
		}
		entry := resolve(cands)
		if entry.Ambiguous {
			stats.Ambiguous++
		}
		ds.Entries[key] = entry
	}

	stats.Outliers = r.flagOutliers(ds)
	return ds, stats
}

// rankBetter reports whether rank a outranks rank b. Rank 1 is the
// highest precedence; zero or negative means unranked, which loses to
// any ranked source.
func rankBetter(a, b int) bool {
	if a <= 0 {
		return false
	}
	return b <= 0 || a < b
}

// resolve picks the winner among candidates for one key.
func resolve(cands []candidate) Entry {
	best := cands[0]
	for _, c := range cands[1:] {
		if rankBetter(c.rank, best.rank) || (c.rank == best.rank && c.seq > best.seq) {
			best = c
		}
	}

	var ties []candidate
	for _, c := range cands {
		if c.rank == best.rank && c.seq == best.seq {
			ties = append(ties, c)
		}
	}
	if len(ties) > 1 {
		sum := 0.0
		for _, c := range ties {
			sum += c.rec.Value
		}
		rec := best.rec
		rec.Value = sum / float64(len(ties))
		return Entry{CanonicalRecord: rec, Ambiguous: true}
	}
	return Entry{CanonicalRecord: best.rec}
}

// flagOutliers marks entries whose value deviates from the previous
// year's reconciled value beyond the configured threshold. Flag only;
// suspicious values stay in the dataset.
func (r *Reconciler) flagOutliers(ds *Dataset) int {
	flagged := 0
	for key, entry := range ds.Entries {
		prevKey := types.RecordKey{CountryCode: key.CountryCode, Year: key.Year - 1, Indicator: key.Indicator}
		prev, ok := ds.Entries[prevKey]
		if !ok {
			continue
		}
		if isOutlier(entry.Value, prev.Value, key.Indicator, r.cfg) {
			entry.Outlier = true
			ds.Entries[key] = entry
			flagged++
		}
	}
	return flagged
}

// isOutlier applies an absolute threshold to percent indicators and a
// relative factor to counts, whose magnitudes vary by orders of
// magnitude between countries.
func isOutlier(value, prev float64, ind types.Indicator, cfg types.IngestConfig) bool {
	if ind.IsPercent() {
		return math.Abs(value-prev) > cfg.OutlierThreshold
	}
	if prev <= 0 {
		return value > 0
	}
	ratio := value / prev
	return ratio > cfg.OutlierFactor || ratio < 1/cfg.OutlierFactor
}
