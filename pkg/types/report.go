// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// WarningKind classifies a non-fatal ingestion problem.
type WarningKind string

const (
	WarnUnmappedCountry WarningKind = "unmapped_country"
	WarnOutOfRange      WarningKind = "out_of_range"
	WarnMalformedValue  WarningKind = "malformed_value"
	WarnAggregateEntity WarningKind = "aggregate_entity"
)

// Warning records one dropped or suspicious row. Warnings never abort a
// run; they are collected per source and surfaced in the RunReport.
type Warning struct {
	Kind     WarningKind `json:"kind" yaml:"kind"`
	SourceID string      `json:"source_id" yaml:"source_id"`
	Row      int         `json:"row" yaml:"row"`
	Detail   string      `json:"detail" yaml:"detail"`
}

// SourceReport summarizes one source's contribution to a run. Rows
// counts data rows read from the file; Parsed counts candidate
// observations, which exceeds Rows for wide layouts where one row
// carries one cell per year.
type SourceReport struct {
	SourceID   string    `json:"source_id" yaml:"source_id"`
	Rows       int       `json:"rows" yaml:"rows"`
	Parsed     int       `json:"parsed" yaml:"parsed"`
	Normalized int       `json:"normalized" yaml:"normalized"`
	Dropped    int       `json:"dropped" yaml:"dropped"`
	Warnings   []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ReconcileStats summarizes conflict resolution for a run.
type ReconcileStats struct {
	// Conflicts counts keys reported by more than one source.
	Conflicts int `json:"conflicts" yaml:"conflicts"`

	// Ambiguous counts keys resolved by averaging equal-rank sources.
	Ambiguous int `json:"ambiguous" yaml:"ambiguous"`

	// Outliers counts observations flagged for year-over-year deviation.
	Outliers int `json:"outliers" yaml:"outliers"`

	// Derived counts observations synthesized from population counts.
	Derived int `json:"derived" yaml:"derived"`
}

// RunReport is the full outcome of one ingestion run. A run either
// replaces the store and produces this report, or fails leaving the
// store untouched.
type RunReport struct {
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
	Sources    []SourceReport `json:"sources" yaml:"sources"`
	Reconcile  ReconcileStats `json:"reconcile" yaml:"reconcile"`
	Records    int            `json:"records" yaml:"records"`
}

// TotalWarnings returns the warning count across all sources.
func (r RunReport) TotalWarnings() int {
	n := 0
	for _, s := range r.Sources {
		n += len(s.Warnings)
	}
	return n
}
