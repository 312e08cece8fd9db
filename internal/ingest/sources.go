// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/energyatlas/accessdb/pkg/types"
)

// SourcesFile is the on-disk declaration of a run's input sources.
type SourcesFile struct {
	Sources []types.SourceConfig `yaml:"sources"`
}

// LoadSources reads and validates sources.yaml. Configuration problems
// are fatal before any source file is opened: a bad declaration would
// fail every record of that source identically.
func LoadSources(path string) ([]types.SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file %s: %w", path, err)
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	if len(sf.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s declares no sources", path)
	}

	seen := make(map[string]bool, len(sf.Sources))
	for i := range sf.Sources {
		src := &sf.Sources[i]
		applySourceDefaults(src)
		if err := validateSource(*src); err != nil {
			return nil, fmt.Errorf("sources file %s: %w", path, err)
		}
		if seen[src.ID] {
			return nil, fmt.Errorf("sources file %s: duplicate source id %q", path, src.ID)
		}
		seen[src.ID] = true
	}
	return sf.Sources, nil
}

func applySourceDefaults(src *types.SourceConfig) {
	if src.Layout == "" {
		src.Layout = types.LayoutLong
	}
	if src.Unit == "" {
		src.Unit = types.UnitPercent
	}
	if src.CountryScheme == "" {
		src.CountryScheme = types.SchemeName
	}
}

func validateSource(src types.SourceConfig) error {
	if src.ID == "" {
		return fmt.Errorf("source with empty id")
	}
	if src.Path == "" {
		return fmt.Errorf("source %s: empty path", src.ID)
	}
	if !src.Indicator.Valid() {
		return fmt.Errorf("source %s: unknown indicator %q", src.ID, src.Indicator)
	}
	switch src.Format {
	case "", types.FormatCSV, types.FormatXLSX:
	default:
		return fmt.Errorf("source %s: unknown format %q", src.ID, src.Format)
	}
	switch src.Layout {
	case types.LayoutLong, types.LayoutWide:
	default:
		return fmt.Errorf("source %s: unknown layout %q", src.ID, src.Layout)
	}
	switch src.Unit {
	case types.UnitPercent, types.UnitRatio, types.UnitCount:
	default:
		return fmt.Errorf("source %s: unknown unit %q", src.ID, src.Unit)
	}
	switch src.CountryScheme {
	case types.SchemeISO3, types.SchemeName:
	default:
		return fmt.Errorf("source %s: unknown country_code_scheme %q", src.ID, src.CountryScheme)
	}
	if src.Columns.Country == "" {
		return fmt.Errorf("source %s: column_map.country is required", src.ID)
	}
	if src.Layout == types.LayoutLong {
		if src.Columns.Year == "" {
			return fmt.Errorf("source %s: column_map.year is required for long layout", src.ID)
		}
		if src.Columns.Value == "" {
			return fmt.Errorf("source %s: column_map.value is required for long layout", src.ID)
		}
	}
	if src.Unit == types.UnitRatio && !src.Indicator.IsPercent() {
		return fmt.Errorf("source %s: ratio unit only applies to percent indicators", src.ID)
	}
	if src.Unit == types.UnitCount && src.Indicator.IsPercent() {
		return fmt.Errorf("source %s: count unit cannot feed percent indicator %s", src.ID, src.Indicator)
	}
	return nil
}
