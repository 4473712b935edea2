// Package main is the entry point for the nutrigen CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the nutrigen CLI.
var rootCmd = &cobra.Command{
	Use:   "nutrigen",
	Short: "Recipe ingredient parsing, matching, and nutrition aggregation",
	Long: `nutrigen converts free-text recipe ingredients into verified per-recipe
nutrition profiles. It parses quantities and units, matches ingredient names
against a reference nutrient database through a blocked fuzzy index,
aggregates nutrients with unit conversion, and validates plausibility
against an independent dietary survey.

Each stage is a subcommand: index builds the reference index, benchmark
derives survey statistics, run processes the recipe corpus, and export
rewrites the clean dataset and diagnostics from stored results.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nutrigen.yaml or ~/.config/nutrigen/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nutrigen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nutrigen"))
		}
	}

	viper.SetEnvPrefix("NUTRIGEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
