package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrigen/internal/convert"
	"github.com/pdiddy/nutrigen/internal/dataset"
	"github.com/pdiddy/nutrigen/internal/match"
	"github.com/pdiddy/nutrigen/internal/parse"
	"github.com/pdiddy/nutrigen/internal/refindex"
	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/internal/validate"
	"github.com/pdiddy/nutrigen/pkg/types"
)

const testReference = "product_name,energy_100g,proteins_100g,carbohydrates_100g,fat_100g\n" +
	"Tomato Sauce,29,1.2,5.3,0.2\n" +
	"Whole Milk,61,3.2,4.8,3.3\n"

// testStats is calibrated so 200 g of tomato sauce per serving lands
// inside every nutrient bound.
func testStats() types.BenchmarkStats {
	return types.BenchmarkStats{
		Energy:      types.MealStat{Mean: 60, StdDev: 15},
		Protein:     types.MealStat{Mean: 2.5, StdDev: 1},
		Carbs:       types.MealStat{Mean: 10, StdDev: 3},
		Fat:         types.MealStat{Mean: 0.5, StdDev: 0.2},
		Respondents: 10,
	}
}

func newTestRunner(t *testing.T, resultsDir string) *Runner {
	t.Helper()

	ts := tables.Default()
	parser := parse.New(types.ParserConfig{}, ts)

	refPath := filepath.Join(t.TempDir(), "reference.csv")
	require.NoError(t, os.WriteFile(refPath, []byte(testReference), 0o644))
	ref, err := dataset.OpenReference(refPath)
	require.NoError(t, err)
	defer ref.Close()

	idx, err := refindex.Open(types.IndexConfig{IndexDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	_, err = idx.Build(context.Background(), ref, parser, ts.Version, io.Discard)
	require.NoError(t, err)

	store, err := NewStore(resultsDir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &Runner{
		Parser:       parser,
		Index:        idx,
		Matcher:      match.New(types.MatchConfig{Threshold: 0.72}),
		Converter:    convert.New(types.ConvertConfig{FallbackMassGrams: 100}, ts),
		Validator:    validate.New(types.ValidateConfig{MinCoverage: 0.4}, testStats()),
		Store:        store,
		TableVersion: ts.Version,
		Workers:      2,
	}
}

func testRecipes() []types.Recipe {
	return []types.Recipe{
		{
			ID: "r000000", Title: "Simple Sauce", Servings: 1,
			Ingredients: []string{"200 g tomato sauce"},
		},
		{
			ID: "r000001", Title: "Sauce Vat", Servings: 1,
			Ingredients: []string{"2 kg tomato sauce"},
		},
		{
			ID: "r000002", Title: "Mystery Dish", Servings: 2,
			Ingredients: []string{"1 cup unicorn dust"},
		},
	}
}

func TestRun(t *testing.T) {
	resultsDir := t.TempDir()
	r := newTestRunner(t, resultsDir)

	summary, err := r.Run(context.Background(), testRecipes(), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Accepted)
	assert.Equal(t, 2, summary.Flagged)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Total())

	rows, err := r.Store.rowsOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// 200 g of tomato sauce at 29 kcal/100g.
	assert.Equal(t, "r000000", rows[0].RecipeID)
	assert.Equal(t, types.VerdictPass, rows[0].Verdict)
	assert.InDelta(t, 58, rows[0].PerServing.Energy, 1e-9)
	assert.Equal(t, 1.0, rows[0].Coverage)

	// Twenty servings' worth in one flags every nutrient bound.
	assert.Equal(t, types.VerdictFlagged, rows[1].Verdict)
	assert.Contains(t, rows[1].Reasons, types.ReasonEnergyOutlier)

	// Nothing in the index blocks with "unicorn dust".
	assert.Equal(t, types.VerdictFlagged, rows[2].Verdict)
	assert.Equal(t, []types.ReasonCode{types.ReasonNoMatch}, rows[2].Reasons)
	assert.Equal(t, 0.0, rows[2].Coverage)
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	resultsDir := t.TempDir()
	r := newTestRunner(t, resultsDir)

	recipes := testRecipes()
	_, err := r.Run(context.Background(), recipes[:2], io.Discard)
	require.NoError(t, err)

	// The second run picks up only the recipe not yet in the store.
	summary, err := r.Run(context.Background(), recipes, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Processed)

	// A third run has nothing left to do.
	summary, err = r.Run(context.Background(), recipes, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Processed)
}

func TestRunCountsParseFailures(t *testing.T) {
	resultsDir := t.TempDir()
	r := newTestRunner(t, resultsDir)

	recipes := []types.Recipe{{
		ID: "r000000", Title: "Half Legible", Servings: 1,
		Ingredients: []string{"***", "200 g tomato sauce"},
	}}

	summary, err := r.Run(context.Background(), recipes, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Failed)

	rows, err := r.Store.rowsOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// The unparseable line lowers coverage but the recipe still passes.
	assert.Equal(t, 1, rows[0].ParseFailures)
	assert.Equal(t, 0.5, rows[0].Coverage)
	assert.Equal(t, types.VerdictPass, rows[0].Verdict)
}

func TestExportClean(t *testing.T) {
	resultsDir := t.TempDir()
	r := newTestRunner(t, resultsDir)

	_, err := r.Run(context.Background(), testRecipes(), io.Discard)
	require.NoError(t, err)

	n, err := r.Store.ExportClean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(resultsDir, "clean.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"r000000"`)
	assert.NotContains(t, string(data), `"r000001"`)
	assert.NotContains(t, string(data), `"r000002"`)

	// Re-exporting the same store is byte-identical.
	_, err = r.Store.ExportClean(context.Background())
	require.NoError(t, err)
	again, err := os.ReadFile(filepath.Join(resultsDir, "clean.json"))
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestExportDiagnostics(t *testing.T) {
	resultsDir := t.TempDir()
	r := newTestRunner(t, resultsDir)

	_, err := r.Run(context.Background(), testRecipes(), io.Discard)
	require.NoError(t, err)

	n, err := r.Store.ExportDiagnostics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(resultsDir, "diagnostics.yaml"))
	require.NoError(t, err)

	var file diagnosticsFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	assert.Equal(t, tables.Default().Version, file.TableVersion)
	require.Len(t, file.Recipes, 2)
	assert.Equal(t, "r000001", file.Recipes[0].RecipeID)
	assert.Equal(t, "r000002", file.Recipes[1].RecipeID)
	assert.Contains(t, file.Recipes[1].Reasons, types.ReasonNoMatch)
}

func TestOutcomeAccepted(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		want bool
	}{
		{"pass", Outcome{Result: validate.Result{Verdict: types.VerdictPass}}, true},
		{"flagged", Outcome{Result: validate.Result{Verdict: types.VerdictFlagged}}, false},
		{"errored", Outcome{Err: io.ErrUnexpectedEOF, Result: validate.Result{Verdict: types.VerdictPass}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.o.Accepted())
		})
	}
}
