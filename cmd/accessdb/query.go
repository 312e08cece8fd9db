// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/energyatlas/accessdb/internal/store"
	"github.com/energyatlas/accessdb/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the observation store (trend, compare, rank, regional, improved, unserved, global)",
	Long: `Query answers read-only aggregate questions against the store. Each
subcommand is one operation of the query surface; all accept --indicator
and --format. Queries fail only when the store has never been populated;
missing individual data points are simply omitted.`,
}

var trendCmd = &cobra.Command{
	Use:   "trend COUNTRY_CODE",
	Short: "Show a country's values over the years, ascending",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

var compareCmd = &cobra.Command{
	Use:   "compare YEAR COUNTRY_CODE...",
	Short: "Compare countries for one year; countries without data are omitted",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCompare,
}

var rankCmd = &cobra.Command{
	Use:   "rank YEAR",
	Short: "Rank countries by value for one year, descending",
	Args:  cobra.ExactArgs(1),
	RunE:  runRank,
}

var regionalCmd = &cobra.Command{
	Use:   "regional YEAR",
	Short: "Mean value per region for one year",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegional,
}

var improvedCmd = &cobra.Command{
	Use:   "improved FROM_YEAR TO_YEAR",
	Short: "Countries with the largest gain between two years",
	Args:  cobra.ExactArgs(2),
	RunE:  runImproved,
}

var unservedCmd = &cobra.Command{
	Use:   "unserved",
	Short: "Countries whose total people without electricity exceeds a threshold",
	Args:  cobra.NoArgs,
	RunE:  runUnserved,
}

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Worldwide total of people with electricity access per year",
	Args:  cobra.NoArgs,
	RunE:  runGlobal,
}

func init() {
	queryCmd.PersistentFlags().String("indicator", string(types.IndicatorAccessPct), "indicator to query")
	queryCmd.PersistentFlags().String("format", "table", "output format: table, json, or yaml")
	rankCmd.Flags().Int("top", 0, "number of countries to return (default from config)")
	improvedCmd.Flags().Int("top", 0, "number of countries to return (default from config)")
	unservedCmd.Flags().Float64("threshold", 1_000_000, "minimum total people without electricity")

	queryCmd.AddCommand(trendCmd, compareCmd, rankCmd, regionalCmd, improvedCmd, unservedCmd, globalCmd)
	rootCmd.AddCommand(queryCmd)
}

// openQueryStore opens the store and resolves the shared query flags.
func openQueryStore(cmd *cobra.Command) (*store.Store, types.Indicator, error) {
	cfg := pipelineConfig(cmd)
	ind, _ := cmd.Flags().GetString("indicator")
	indicator := types.Indicator(ind)
	if !indicator.Valid() {
		return nil, "", fmt.Errorf("unknown indicator %q", ind)
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, "", err
	}
	return st, indicator, nil
}

func runTrend(cmd *cobra.Command, args []string) error {
	st, indicator, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	series, err := st.Trend(context.Background(), args[0], indicator)
	if err != nil {
		return err
	}

	return output(cmd, series, func() {
		fmt.Printf("%-6s  %s\n", "Year", "Value")
		for _, yv := range series {
			fmt.Printf("%-6d  %.2f\n", yv.Year, yv.Value)
		}
		fmt.Printf("\n%d observations\n", len(series))
	})
}

func runCompare(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}

	st, indicator, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	values, err := st.Compare(context.Background(), args[1:], year, indicator)
	if err != nil {
		return err
	}

	return output(cmd, values, func() {
		fmt.Printf("%-8s  %s\n", "Country", "Value")
		for _, code := range args[1:] {
			if v, ok := values[code]; ok {
				fmt.Printf("%-8s  %.2f\n", code, v)
			}
		}
	})
}

func runRank(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	topN, _ := cmd.Flags().GetInt("top")
	if topN <= 0 {
		topN = pipelineConfig(cmd).Query.MaxResults
	}

	st, indicator, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ranking, err := st.Rank(context.Background(), indicator, year, topN)
	if err != nil {
		return err
	}

	return output(cmd, ranking, func() {
		fmt.Printf("%-4s  %-8s  %s\n", "Rank", "Country", "Value")
		for i, cv := range ranking {
			fmt.Printf("%-4d  %-8s  %.2f\n", i+1, cv.CountryCode, cv.Value)
		}
	})
}

func runRegional(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}

	st, indicator, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	regions, err := st.Regional(context.Background(), year, indicator)
	if err != nil {
		return err
	}

	return output(cmd, regions, func() {
		fmt.Printf("%-15s  %s\n", "Region", "Mean")
		for _, rv := range regions {
			fmt.Printf("%-15s  %.2f\n", rv.Region, rv.Value)
		}
	})
}

func runImproved(cmd *cobra.Command, args []string) error {
	fromYear, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	toYear, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[1])
	}
	topN, _ := cmd.Flags().GetInt("top")
	if topN <= 0 {
		topN = pipelineConfig(cmd).Query.MaxResults
	}

	st, indicator, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	deltas, err := st.MostImproved(context.Background(), indicator, fromYear, toYear, topN)
	if err != nil {
		return err
	}

	return output(cmd, deltas, func() {
		fmt.Printf("%-8s  %-8s  %-8s  %s\n", "Country", "From", "To", "Delta")
		for _, cd := range deltas {
			fmt.Printf("%-8s  %-8.2f  %-8.2f  %+.2f\n", cd.CountryCode, cd.From, cd.To, cd.Delta)
		}
	})
}

func runUnserved(cmd *cobra.Command, args []string) error {
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	st, _, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	totals, err := st.Unserved(context.Background(), threshold)
	if err != nil {
		return err
	}

	return output(cmd, totals, func() {
		fmt.Printf("%-8s  %s\n", "Country", "People without")
		for _, cv := range totals {
			fmt.Printf("%-8s  %.0f\n", cv.CountryCode, cv.Value)
		}
	})
}

func runGlobal(cmd *cobra.Command, args []string) error {
	st, _, err := openQueryStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	series, err := st.GlobalTrend(context.Background())
	if err != nil {
		return err
	}

	return output(cmd, series, func() {
		fmt.Printf("%-6s  %s\n", "Year", "With access")
		for _, yv := range series {
			fmt.Printf("%-6d  %.0f\n", yv.Year, yv.Value)
		}
	})
}

// output renders v as json or yaml, or calls table for the default format.
func output(cmd *cobra.Command, v any, table func()) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case "table", "":
		table()
		return nil
	}
	return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
}
