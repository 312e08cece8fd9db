// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the accessdb CLI: ingestion of
// electricity-access statistics and the query surface over the store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/energyatlas/accessdb/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the accessdb CLI.
var rootCmd = &cobra.Command{
	Use:   "accessdb",
	Short: "Normalized store for global electricity-access statistics",
	Long: `accessdb ingests electricity-access statistics published by multiple
sources (differing schemas, units, and country naming), reconciles them
into a single normalized SQLite store, and answers aggregate queries.

Sources are declared in sources.yaml; an ingestion run fully replaces
the stored dataset. The query subcommands (trend, compare, rank,
regional, improved, unserved, global) are the contract exposed to
presentation layers.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./accessdb.yaml or ~/.config/accessdb/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default: ./accessdb.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("accessdb")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "accessdb"))
		}
	}

	viper.SetDefault("store.db_path", "accessdb.db")
	viper.SetDefault("ingest.sources_path", "sources.yaml")
	viper.SetDefault("ingest.outlier_threshold", 25.0)
	viper.SetDefault("ingest.outlier_factor", 2.0)
	viper.SetDefault("ingest.derive_access", true)
	viper.SetDefault("query.max_results", 20)

	viper.SetEnvPrefix("ACCESSDB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the stage configurations from viper and flags.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		Ingest: types.IngestConfig{
			SourcesPath:      viper.GetString("ingest.sources_path"),
			OutlierThreshold: viper.GetFloat64("ingest.outlier_threshold"),
			OutlierFactor:    viper.GetFloat64("ingest.outlier_factor"),
			DeriveAccess:     viper.GetBool("ingest.derive_access"),
		},
		Store: types.StoreConfig{
			DBPath: viper.GetString("store.db_path"),
		},
		Query: types.QueryConfig{
			MaxResults: viper.GetInt("query.max_results"),
		},
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.DBPath = db
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
