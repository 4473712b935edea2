package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrigen/internal/parse"
	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [lines...]",
	Short: "Parse raw ingredient lines and print the structured records",
	Long: `Parse runs ingredient lines through the parser and prints the resulting
quantity, unit, descriptor, and normalized name as YAML. Useful for
inspecting how a line will be treated before a full pipeline run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	ts, err := tables.Load(viper.GetString("tables"))
	if err != nil {
		return err
	}

	parser := parse.New(types.ParserConfig{
		RangePolicy: types.RangePolicy(viper.GetString("range-policy")),
	}, ts)

	failures := 0
	for _, line := range args {
		ing, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed %q: %v\n", line, err)
			failures++
			continue
		}
		data, err := yaml.Marshal(ing)
		if err != nil {
			return fmt.Errorf("marshaling parsed ingredient: %w", err)
		}
		fmt.Printf("--- %s\n%s", line, data)
	}

	if failures > 0 {
		return fmt.Errorf("%d line(s) failed to parse", failures)
	}
	return nil
}

func init() {
	parseCmd.Flags().String("tables", "", "YAML table-set file (default: built-in tables)")
	parseCmd.Flags().String("range-policy", "midpoint", "quantity range resolution: midpoint, low, or high")

	rootCmd.AddCommand(parseCmd)
}
