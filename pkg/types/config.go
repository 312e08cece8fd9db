// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceFormat identifies the file format of a source.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
)

// SourceLayout identifies how observations are laid out in a source file.
type SourceLayout string

const (
	// LayoutLong is one observation per row (country, year, value columns).
	LayoutLong SourceLayout = "long"

	// LayoutWide is one country per row with one column per year
	// (the World Bank / Kaggle population export shape).
	LayoutWide SourceLayout = "wide"
)

// SourceUnit declares the unit values are expressed in.
type SourceUnit string

const (
	// UnitPercent means values are already percentages in [0, 100].
	UnitPercent SourceUnit = "percent"

	// UnitRatio means values are fractions in [0, 1] and are scaled by 100.
	UnitRatio SourceUnit = "ratio"

	// UnitCount means values are absolute counts (population, people without).
	UnitCount SourceUnit = "count"
)

// CountryScheme declares how a source identifies countries.
type CountryScheme string

const (
	// SchemeISO3 means the country column holds ISO-3166 alpha-3 codes.
	SchemeISO3 CountryScheme = "iso3"

	// SchemeName means the country column holds free-form country names
	// resolved through the alias table.
	SchemeName CountryScheme = "name"
)

// ColumnMap names the source columns holding each canonical field.
// Year is unused for wide-layout sources, where the year is the column
// header itself.
type ColumnMap struct {
	Country string `json:"country" yaml:"country"`
	Year    string `json:"year,omitempty" yaml:"year,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
}

// SourceConfig declares one raw source file and how to interpret it.
// Adding a source is a configuration change, not a code change.
type SourceConfig struct {
	// ID is a unique short name for the source (e.g. "owid-electricity").
	ID string `json:"id" yaml:"id"`

	// Path is the local path to the already-downloaded file.
	Path string `json:"path" yaml:"path"`

	// Format is csv or xlsx. Empty means inferred from the file extension.
	Format SourceFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// Layout is long or wide (default long).
	Layout SourceLayout `json:"layout,omitempty" yaml:"layout,omitempty"`

	// Sheet selects the worksheet for xlsx sources. Empty means first sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`

	// Columns maps canonical fields to this source's column headers.
	Columns ColumnMap `json:"column_map" yaml:"column_map"`

	// Indicator is the measure every row of this source reports.
	Indicator Indicator `json:"indicator" yaml:"indicator"`

	// Unit is percent, ratio, or count.
	Unit SourceUnit `json:"unit" yaml:"unit"`

	// CountryScheme is iso3 or name.
	CountryScheme CountryScheme `json:"country_code_scheme" yaml:"country_code_scheme"`

	// Precedence ranks this source against others reporting the same
	// observation. Rank 1 is the most trusted; zero means unranked and
	// loses to any ranked source.
	Precedence int `json:"precedence" yaml:"precedence"`

	// SkipAggregates drops aggregate entities (World, income groups,
	// regional rollups) that appear alongside countries in some exports.
	SkipAggregates bool `json:"skip_aggregates,omitempty" yaml:"skip_aggregates,omitempty"`
}

// IngestConfig holds settings for one ingestion run.
type IngestConfig struct {
	// SourcesPath is the path to the sources.yaml declaration file.
	SourcesPath string `json:"sources_path" yaml:"sources_path"`

	// OutlierThreshold is the maximum year-over-year change for percent
	// indicators before an observation is flagged (default 25.0).
	OutlierThreshold float64 `json:"outlier_threshold" yaml:"outlier_threshold"`

	// OutlierFactor is the maximum year-over-year ratio for count
	// indicators before an observation is flagged (default 2.0).
	OutlierFactor float64 `json:"outlier_factor" yaml:"outlier_factor"`

	// DeriveAccess computes ELECTRICITY_ACCESS_PCT from POPULATION and
	// PEOPLE_WITHOUT_ELECTRICITY where no source reports it directly.
	DeriveAccess bool `json:"derive_access" yaml:"derive_access"`
}

// StoreConfig holds settings for the observation store.
type StoreConfig struct {
	// DBPath is the SQLite database file path (default "accessdb.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// QueryConfig holds settings for the query surface.
type QueryConfig struct {
	// MaxResults caps ranking results when top_n is not given (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Ingest IngestConfig `json:"ingest" yaml:"ingest"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Query  QueryConfig  `json:"query" yaml:"query"`
}
