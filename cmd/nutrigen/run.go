package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nutrigen/internal/convert"
	"github.com/pdiddy/nutrigen/internal/dataset"
	"github.com/pdiddy/nutrigen/internal/match"
	"github.com/pdiddy/nutrigen/internal/parse"
	"github.com/pdiddy/nutrigen/internal/pipeline"
	"github.com/pdiddy/nutrigen/internal/refindex"
	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/internal/validate"
	"github.com/pdiddy/nutrigen/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the recipe corpus into verified nutrition profiles",
	Long: `Run parses every ingredient line in the corpus, matches names against
the reference index, aggregates nutrients with unit conversion, and
validates each profile against the benchmark statistics. Outcomes land in
the results database; recipes already processed are skipped, so an
interrupted run resumes where it stopped. On completion the clean dataset
and diagnostics are exported.

Build the index (nutrigen index) and derive the benchmark
(nutrigen benchmark) before the first run.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg := runConfig()

	ts, err := tables.Load(cfg.TablesPath)
	if err != nil {
		return err
	}

	// Inputs are resolved before any per-recipe work: a corrupt or empty
	// dataset fails here, not halfway through the corpus.
	recipes, err := dataset.LoadRecipes(viper.GetString("recipes"), os.Stderr)
	if err != nil {
		return err
	}

	stats, err := validate.LoadStats(filepath.Join(cfg.ResultsDir, "benchmark.yaml"))
	if err != nil {
		return fmt.Errorf("%w (run 'nutrigen benchmark' first)", err)
	}

	idx, err := refindex.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer idx.Close()

	indexVersion, err := idx.TableVersion(context.Background())
	if err != nil {
		return fmt.Errorf("%w (run 'nutrigen index' first)", err)
	}
	if indexVersion != ts.Version {
		return fmt.Errorf("index was built with table set %q but run uses %q: rebuild the index",
			indexVersion, ts.Version)
	}

	store, err := pipeline.NewStore(cfg.ResultsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := &pipeline.Runner{
		Parser:       parse.New(cfg.Parser, ts),
		Index:        idx,
		Matcher:      match.New(cfg.Match),
		Converter:    convert.New(cfg.Convert, ts),
		Validator:    validate.New(cfg.Validate, stats),
		Store:        store,
		TableVersion: ts.Version,
		Workers:      cfg.Workers,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, recipes, os.Stdout)
	if err != nil {
		return err
	}

	accepted, err := store.ExportClean(context.Background())
	if err != nil {
		return err
	}
	flagged, err := store.ExportDiagnostics(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("exported %d clean recipe(s), %d diagnostic(s)\n", accepted, flagged)

	if summary.Failed > 0 {
		return fmt.Errorf("%d recipe(s) failed processing", summary.Failed)
	}
	return nil
}

// runConfig assembles the immutable pipeline configuration from flags and
// the config file. Every stage receives its settings from this one value.
func runConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Parser: types.ParserConfig{
			RangePolicy: types.RangePolicy(viper.GetString("range-policy")),
		},
		Index: types.IndexConfig{
			IndexDir:     viper.GetString("index-dir"),
			CandidateCap: viper.GetInt("candidate-cap"),
		},
		Match: types.MatchConfig{
			Threshold: viper.GetFloat64("threshold"),
		},
		Convert: types.ConvertConfig{
			FallbackMassGrams: viper.GetFloat64("fallback-mass"),
		},
		Validate: types.ValidateConfig{
			MealsPerDay:  viper.GetInt("meals-per-day"),
			LowMultiple:  viper.GetFloat64("low-multiple"),
			HighMultiple: viper.GetFloat64("high-multiple"),
			MinCoverage:  viper.GetFloat64("min-coverage"),
		},
		TablesPath: viper.GetString("tables"),
		ResultsDir: viper.GetString("results-dir"),
		Workers:    viper.GetInt("workers"),
	}
}

func init() {
	runCmd.Flags().String("recipes", "data/recipes.csv", "recipe corpus CSV")
	runCmd.Flags().String("index-dir", "index", "directory holding the reference index")
	runCmd.Flags().String("results-dir", "results", "directory for results database and exports")
	runCmd.Flags().String("tables", "", "YAML table-set file (default: built-in tables)")
	runCmd.Flags().String("range-policy", "midpoint", "quantity range resolution: midpoint, low, or high")
	runCmd.Flags().Int("candidate-cap", 200, "maximum candidates per index query")
	runCmd.Flags().Float64("threshold", 0.72, "fuzzy match acceptance threshold")
	runCmd.Flags().Float64("fallback-mass", 100, "fallback mass in grams for unresolved conversions")
	runCmd.Flags().Float64("low-multiple", 0.2, "lower plausibility bound as multiple of benchmark mean")
	runCmd.Flags().Float64("high-multiple", 3.0, "upper plausibility bound as multiple of benchmark mean")
	runCmd.Flags().Float64("min-coverage", 0.4, "minimum ingredient coverage ratio")
	runCmd.Flags().Int("workers", 4, "concurrent recipe workers")
	runCmd.Flags().Int("meals-per-day", 3, "meals per day (must match benchmark derivation)")

	rootCmd.AddCommand(runCmd)
}
