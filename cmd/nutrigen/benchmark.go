package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nutrigen/internal/dataset"
	"github.com/pdiddy/nutrigen/internal/validate"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Derive per-meal benchmark statistics from the dietary survey",
	Long: `Benchmark reads the independent dietary-intake survey, divides daily
intake by the configured meals per day, and writes per-meal mean and
spread for each nutrient to benchmark.yaml in the results directory.
The run command validates every profile against these statistics.`,
	RunE: runBenchmark,
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	records, err := dataset.LoadSurvey(viper.GetString("survey"))
	if err != nil {
		return err
	}

	stats, err := validate.DeriveBenchmark(records, viper.GetInt("meals-per-day"))
	if err != nil {
		return err
	}

	resultsDir := viper.GetString("results-dir")
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	path := filepath.Join(resultsDir, "benchmark.yaml")
	if err := validate.SaveStats(path, stats); err != nil {
		return err
	}

	fmt.Printf("derived benchmark from %d respondents\n", stats.Respondents)
	fmt.Printf("per-meal means: energy %.0f kcal, protein %.1f g, carbs %.1f g, fat %.1f g\n",
		stats.Energy.Mean, stats.Protein.Mean, stats.Carbs.Mean, stats.Fat.Mean)
	fmt.Println("wrote", path)
	return nil
}

func init() {
	benchmarkCmd.Flags().String("survey", "data/survey.csv", "dietary-intake survey CSV")
	benchmarkCmd.Flags().Int("meals-per-day", 3, "meals per day used to derive per-meal stats")
	benchmarkCmd.Flags().String("results-dir", "results", "directory for benchmark.yaml")

	rootCmd.AddCommand(benchmarkCmd)
}
