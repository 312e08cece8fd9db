// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/energyatlas/accessdb/internal/ingest"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Validate and list the declared sources",
	Long: `Sources loads the sources.yaml declaration, validates every entry, and
prints the resolved configuration. A non-zero exit means the declaration
would abort an ingestion run.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().String("sources", "", "sources declaration file (default: ./sources.yaml)")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	if path, _ := cmd.Flags().GetString("sources"); path != "" {
		cfg.Ingest.SourcesPath = path
	}

	sources, err := ingest.LoadSources(cfg.Ingest.SourcesPath)
	if err != nil {
		return err
	}

	fmt.Printf("%-20s  %-6s  %-6s  %-26s  %-8s  %-6s  %s\n",
		"ID", "Format", "Layout", "Indicator", "Unit", "Rank", "Path")
	for _, src := range sources {
		format := src.Format
		if format == "" {
			format = "auto"
		}
		missing := ""
		if _, err := os.Stat(src.Path); err != nil {
			missing = "  (missing)"
		}
		fmt.Printf("%-20s  %-6s  %-6s  %-26s  %-8s  %-6d  %s%s\n",
			src.ID, format, src.Layout, src.Indicator, src.Unit, src.Precedence, src.Path, missing)
	}
	fmt.Printf("\n%d sources\n", len(sources))
	return nil
}
