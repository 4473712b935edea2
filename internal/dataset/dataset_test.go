// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRecipes(t *testing.T) {
	path := writeFile(t, "recipes.csv",
		"title,ingredients,instructions,servings\n"+
			"Pancakes,\"1 cup flour\n2 eggs\n1 cup milk\",Mix and fry.,4\n"+
			"Toast,1 slice bread; 1 tbsp butter,Toast it.,1\n")

	var warnings bytes.Buffer
	recipes, err := LoadRecipes(path, &warnings)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, "r000000", recipes[0].ID)
	assert.Equal(t, "Pancakes", recipes[0].Title)
	assert.Equal(t, []string{"1 cup flour", "2 eggs", "1 cup milk"}, recipes[0].Ingredients)
	assert.Equal(t, 4, recipes[0].Servings)

	// Semicolon separation when the field has no newlines.
	assert.Equal(t, "r000001", recipes[1].ID)
	assert.Equal(t, []string{"1 slice bread", "1 tbsp butter"}, recipes[1].Ingredients)

	assert.Empty(t, warnings.String())
}

func TestLoadRecipesServingsDefault(t *testing.T) {
	path := writeFile(t, "recipes.csv",
		"title,ingredients,servings\n"+
			"A,1 egg,\n"+
			"B,1 egg,zero\n"+
			"C,1 egg,0\n")

	var warnings bytes.Buffer
	recipes, err := LoadRecipes(path, &warnings)
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	for _, r := range recipes {
		assert.Equal(t, 1, r.Servings, "recipe %s", r.ID)
	}
	assert.Contains(t, warnings.String(), "r000000 has no servings")
	assert.Contains(t, warnings.String(), `r000001 has unusable servings "zero"`)
	assert.Contains(t, warnings.String(), `r000002 has unusable servings "0"`)
}

func TestLoadRecipesFatalInputs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"missing column", "title,instructions\nA,Mix.\n"},
		{"header only", "title,ingredients,servings\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "recipes.csv", tt.content)
			_, err := LoadRecipes(path, io.Discard)
			assert.Error(t, err)
		})
	}

	_, err := LoadRecipes(filepath.Join(t.TempDir(), "missing.csv"), io.Discard)
	assert.Error(t, err)
}

func TestReferenceReader(t *testing.T) {
	path := writeFile(t, "reference.csv",
		"product_name,energy_100g,proteins_100g,carbohydrates_100g,fat_100g\n"+
			"Whole Milk,61,3.2,4.8,3.3\n"+
			"Mystery Paste,100,,-1,abc\n"+
			",50,1,1,1\n")

	rr, err := OpenReference(path)
	require.NoError(t, err)
	defer rr.Close()

	row, err := rr.Next()
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", row.ProductName)
	assert.Equal(t, 61.0, row.Per100g.Energy)
	assert.Equal(t, 3.2, row.Per100g.Protein)
	assert.Equal(t, 4, row.Present)

	row, err = rr.Next()
	require.NoError(t, err)
	assert.Equal(t, "Mystery Paste", row.ProductName)
	// Blank, negative, and unparseable fields all count as unknown.
	assert.Equal(t, 1, row.Present)
	assert.Equal(t, 0.0, row.Per100g.Protein)
	assert.Equal(t, 0.0, row.Per100g.Carbs)
	assert.Equal(t, 0.0, row.Per100g.Fat)

	row, err = rr.Next()
	require.NoError(t, err)
	assert.Empty(t, row.ProductName)

	_, err = rr.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestOpenReferenceBadHeader(t *testing.T) {
	path := writeFile(t, "reference.csv", "product_name,energy_100g\nMilk,61\n")
	_, err := OpenReference(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fat_100g")
}

func TestLoadSurvey(t *testing.T) {
	path := writeFile(t, "survey.csv",
		"respondent_id,energy_kcal,protein_g,carbs_g,fat_g\n"+
			"1,2100,80,250,70\n"+
			"2,,90,240,65\n"+
			"3,1900,-5,200,60\n"+
			"4,2300,85,260,75\n")

	records, err := LoadSurvey(path)
	require.NoError(t, err)

	// Rows 2 and 3 are unusable and skipped.
	require.Len(t, records, 2)
	assert.Equal(t, 2100.0, records[0].EnergyKcal)
	assert.Equal(t, 85.0, records[1].ProteinG)
}

func TestLoadSurveyNoUsableRows(t *testing.T) {
	path := writeFile(t, "survey.csv",
		"energy_kcal,protein_g,carbs_g,fat_g\n"+
			",,,\n")
	_, err := LoadSurvey(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable survey rows")
}
