// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads the three tabular inputs: the recipe corpus, the
// reference nutrient database, and the dietary-intake benchmark survey.
// A corrupt or empty input file is a fatal error reported before any
// per-recipe processing begins.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/nutrigen/pkg/types"
)

// header maps lowercased column names to their positions.
type header map[string]int

func readHeader(r *csv.Reader, path string, required []string) (header, error) {
	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	h := make(header, len(record))
	for i, col := range record {
		h[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("%s is missing required column %q", path, col)
		}
	}
	return h, nil
}

func (h header) field(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// LoadRecipes reads the full recipe corpus. Ingredient lines inside the
// ingredients field are separated by newlines or semicolons. A missing or
// unparseable servings value defaults to 1 with a warning on w.
func LoadRecipes(path string, w io.Writer) ([]types.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipe corpus: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, path, []string{"title", "ingredients", "servings"})
	if err != nil {
		return nil, err
	}

	var recipes []types.Recipe
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", path, len(recipes)+2, err)
		}

		id := fmt.Sprintf("r%06d", len(recipes))

		servings := 1
		if raw := h.field(record, "servings"); raw == "" {
			fmt.Fprintf(w, "warning: %s has no servings, defaulting to 1\n", id)
		} else if n, err := strconv.Atoi(raw); err != nil || n < 1 {
			fmt.Fprintf(w, "warning: %s has unusable servings %q, defaulting to 1\n", id, raw)
		} else {
			servings = n
		}

		recipes = append(recipes, types.Recipe{
			ID:           id,
			Title:        h.field(record, "title"),
			Ingredients:  splitIngredients(h.field(record, "ingredients")),
			Instructions: h.field(record, "instructions"),
			Servings:     servings,
		})
	}

	if len(recipes) == 0 {
		return nil, fmt.Errorf("%s contains no recipes", path)
	}
	return recipes, nil
}

// splitIngredients breaks the ingredients field into ordered raw lines.
func splitIngredients(field string) []string {
	sep := "\n"
	if !strings.Contains(field, "\n") {
		sep = ";"
	}
	var lines []string
	for _, part := range strings.Split(field, sep) {
		if p := strings.TrimSpace(part); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// ReferenceRow is one product from the reference nutrient database.
// Missing or unparseable nutrient fields are zero in Per100g; Present
// counts how many of the four fields carried a usable value.
type ReferenceRow struct {
	ProductName string
	Per100g     types.NutrientVector
	Present     int
}

// ReferenceReader streams the reference database, which is too large to
// hold in memory alongside the index build.
type ReferenceReader struct {
	f *os.File
	r *csv.Reader
	h header
}

// OpenReference opens the reference nutrient database for streaming and
// validates its header.
func OpenReference(path string) (*ReferenceReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference database: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, path, []string{
		"product_name", "energy_100g", "proteins_100g", "carbohydrates_100g", "fat_100g",
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	return &ReferenceReader{f: f, r: r, h: h}, nil
}

// Next returns the next reference row, or io.EOF at end of input.
func (rr *ReferenceReader) Next() (ReferenceRow, error) {
	record, err := rr.r.Read()
	if err != nil {
		return ReferenceRow{}, err
	}

	row := ReferenceRow{ProductName: rr.h.field(record, "product_name")}
	row.Per100g.Energy = nutrientField(rr.h, record, "energy_100g", &row.Present)
	row.Per100g.Protein = nutrientField(rr.h, record, "proteins_100g", &row.Present)
	row.Per100g.Carbs = nutrientField(rr.h, record, "carbohydrates_100g", &row.Present)
	row.Per100g.Fat = nutrientField(rr.h, record, "fat_100g", &row.Present)
	return row, nil
}

// Close releases the underlying file.
func (rr *ReferenceReader) Close() error {
	return rr.f.Close()
}

// nutrientField parses one nutrient column. Blank, unparseable, or
// negative values count as unknown and contribute zero.
func nutrientField(h header, record []string, col string, present *int) float64 {
	raw := h.field(record, col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	*present++
	return v
}

// LoadSurvey reads the benchmark survey's per-respondent daily intake.
// Rows with no usable nutrient values are skipped; an input yielding zero
// usable rows is fatal.
func LoadSurvey(path string) ([]types.SurveyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening benchmark survey: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	h, err := readHeader(r, path, []string{"energy_kcal", "protein_g", "carbs_g", "fat_g"})
	if err != nil {
		return nil, err
	}

	var records []types.SurveyRecord
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		rec := types.SurveyRecord{}
		ok := true
		for _, c := range []struct {
			col string
			dst *float64
		}{
			{"energy_kcal", &rec.EnergyKcal},
			{"protein_g", &rec.ProteinG},
			{"carbs_g", &rec.CarbsG},
			{"fat_g", &rec.FatG},
		} {
			v, err := strconv.ParseFloat(h.field(record, c.col), 64)
			if err != nil || v < 0 {
				ok = false
				break
			}
			*c.dst = v
		}
		if ok {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s contains no usable survey rows", path)
	}
	return records, nil
}
