package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nutrigen/internal/pipeline"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Rewrite the clean dataset and diagnostics from stored results",
	Long: `Export regenerates clean.json and diagnostics.yaml from the results
database without reprocessing any recipe. Output ordering is
deterministic, so identical stored results always produce byte-identical
files.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	store, err := pipeline.NewStore(viper.GetString("results-dir"))
	if err != nil {
		return err
	}
	defer store.Close()

	accepted, err := store.ExportClean(context.Background())
	if err != nil {
		return err
	}
	flagged, err := store.ExportDiagnostics(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("exported %d clean recipe(s), %d diagnostic(s)\n", accepted, flagged)
	return nil
}

func init() {
	exportCmd.Flags().String("results-dir", "results", "directory holding the results database")

	rootCmd.AddCommand(exportCmd)
}
