package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nutrigen/internal/dataset"
	"github.com/pdiddy/nutrigen/internal/parse"
	"github.com/pdiddy/nutrigen/internal/refindex"
	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the blocked reference nutrient index",
	Long: `Index streams the reference nutrient database CSV, normalizes product
names with the same rules applied to ingredient names, derives blocking
keys, and writes a SQLite index. The build replaces any previous index;
queries afterwards only compare against products sharing a blocking key,
so candidate sets stay bounded at millions of records.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	ts, err := tables.Load(viper.GetString("tables"))
	if err != nil {
		return err
	}

	reader, err := dataset.OpenReference(viper.GetString("reference"))
	if err != nil {
		return err
	}
	defer reader.Close()

	idx, err := refindex.Open(types.IndexConfig{
		IndexDir:     viper.GetString("index-dir"),
		CandidateCap: viper.GetInt("candidate-cap"),
	})
	if err != nil {
		return err
	}
	defer idx.Close()

	parser := parse.New(types.ParserConfig{}, ts)

	summary, err := idx.Build(context.Background(), reader, parser, ts.Version, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Indexed == 0 {
		return fmt.Errorf("no products indexed: reference database is empty or unusable")
	}
	return nil
}

func init() {
	indexCmd.Flags().String("reference", "data/reference.csv", "reference nutrient database CSV")
	indexCmd.Flags().String("index-dir", "index", "directory for the reference index database")
	indexCmd.Flags().String("tables", "", "YAML table-set file (default: built-in tables)")
	indexCmd.Flags().Int("candidate-cap", 200, "maximum candidates returned per query")

	rootCmd.AddCommand(indexCmd)
}
