package types

// RangePolicy selects how a quantity range ("1-2") resolves to a single
// representative value.
type RangePolicy string

const (
	RangeMidpoint RangePolicy = "midpoint"
	RangeLow      RangePolicy = "low"
	RangeHigh     RangePolicy = "high"
)

// ParserConfig holds settings for the ingredient parser.
type ParserConfig struct {
	// RangePolicy resolves quantity ranges (default midpoint).
	RangePolicy RangePolicy `json:"range_policy" yaml:"range_policy"`
}

// IndexConfig holds settings for the reference nutrient index.
type IndexConfig struct {
	// IndexDir is the directory holding the index database (reference.db).
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// CandidateCap bounds the candidate set returned per query (default 200).
	CandidateCap int `json:"candidate_cap" yaml:"candidate_cap"`
}

// MatchConfig holds settings for the fuzzy matcher.
type MatchConfig struct {
	// Threshold is the minimum similarity in [0,1] for a match to be
	// accepted (default 0.72). This is the single knob trading coverage
	// against false matches.
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// ConvertConfig holds settings for unit conversion and aggregation.
type ConvertConfig struct {
	// FallbackMassGrams is used when quantity, unit, or density cannot be
	// resolved (default 100).
	FallbackMassGrams float64 `json:"fallback_mass_grams" yaml:"fallback_mass_grams"`
}

// ValidateConfig holds settings for the benchmark validator.
type ValidateConfig struct {
	// MealsPerDay divides daily survey intake into per-meal stats (default 3).
	MealsPerDay int `json:"meals_per_day" yaml:"meals_per_day"`

	// LowMultiple and HighMultiple bound the plausible range as multiples
	// of the benchmark per-meal mean (defaults 0.2 and 3.0).
	LowMultiple  float64 `json:"low_multiple" yaml:"low_multiple"`
	HighMultiple float64 `json:"high_multiple" yaml:"high_multiple"`

	// MinCoverage is the minimum coverage ratio for a recipe to pass
	// (default 0.4).
	MinCoverage float64 `json:"min_coverage" yaml:"min_coverage"`
}

// PipelineConfig groups all stage configurations plus run-level settings.
// One immutable value is built from flags and config file at startup and
// threaded through every stage; no stage reads hidden globals.
type PipelineConfig struct {
	Parser   ParserConfig   `json:"parser" yaml:"parser"`
	Index    IndexConfig    `json:"index" yaml:"index"`
	Match    MatchConfig    `json:"match" yaml:"match"`
	Convert  ConvertConfig  `json:"convert" yaml:"convert"`
	Validate ValidateConfig `json:"validate" yaml:"validate"`

	// TablesPath optionally points at a YAML table-set file overriding
	// the built-in unit/density/stopword tables.
	TablesPath string `json:"tables_path,omitempty" yaml:"tables_path,omitempty"`

	// ResultsDir is the directory for the results database and exports.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// Workers is the number of concurrent recipe workers (default 4).
	Workers int `json:"workers" yaml:"workers"`
}
