// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/energyatlas/accessdb/internal/ingest"
	"github.com/energyatlas/accessdb/internal/normalize"
	"github.com/energyatlas/accessdb/internal/reconcile"
	"github.com/energyatlas/accessdb/internal/store"
	"github.com/energyatlas/accessdb/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion pipeline and replace the stored dataset",
	Long: `Ingest parses every source declared in sources.yaml, normalizes rows
onto the canonical schema, reconciles conflicting observations by source
precedence, and atomically replaces the stored dataset.

The run either fully replaces the store and prints a warning summary, or
fails cleanly leaving the prior dataset untouched.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("sources", "", "sources declaration file (default: ./sources.yaml)")
	ingestCmd.Flags().String("report", "", "write the full run report to this YAML file")
	ingestCmd.Flags().Bool("verbose", false, "print every warning instead of a summary")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	if path, _ := cmd.Flags().GetString("sources"); path != "" {
		cfg.Ingest.SourcesPath = path
	}

	sources, err := ingest.LoadSources(cfg.Ingest.SourcesPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	started := time.Now()
	resolver := normalize.NewResolver()

	records, reports, err := ingest.Collect(ctx, sources, resolver, os.Stdout)
	if err != nil {
		return err
	}

	rec := reconcile.New(sources, cfg.Ingest)
	dataset, stats := rec.Reconcile(records)
	if cfg.Ingest.DeriveAccess {
		stats.Derived = reconcile.DeriveAccess(dataset)
	}

	report := buildReport(started, reports, stats, dataset.Len())

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Replace(ctx, dataset, resolver.Countries(), report); err != nil {
		return err
	}

	printSummary(cmd, report)

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding run report: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing run report: %w", err)
		}
		fmt.Printf("Run report written to %s\n", path)
	}
	return nil
}

func buildReport(started time.Time, sources []types.SourceReport, stats types.ReconcileStats, records int) types.RunReport {
	return types.RunReport{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Sources:    sources,
		Reconcile:  stats,
		Records:    records,
	}
}

func printSummary(cmd *cobra.Command, report types.RunReport) {
	fmt.Printf("\nreconciled: %d observations (%d conflicts, %d ambiguous, %d outliers, %d derived)\n",
		report.Records, report.Reconcile.Conflicts, report.Reconcile.Ambiguous,
		report.Reconcile.Outliers, report.Reconcile.Derived)
	fmt.Printf("warnings: %d\n", report.TotalWarnings())

	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return
	}
	for _, src := range report.Sources {
		for _, w := range src.Warnings {
			fmt.Printf("  %s row %d [%s]: %s\n", w.SourceID, w.Row, w.Kind, w.Detail)
		}
	}
}
