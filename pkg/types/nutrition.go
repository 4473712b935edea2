// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NutrientVector holds the four tracked nutrients. Values are kcal for
// energy and grams for the macronutrients, either per 100 g of product
// or as recipe totals depending on context.
type NutrientVector struct {
	Energy  float64 `json:"energy" yaml:"energy"`
	Protein float64 `json:"protein" yaml:"protein"`
	Carbs   float64 `json:"carbs" yaml:"carbs"`
	Fat     float64 `json:"fat" yaml:"fat"`
}

// Add returns the element-wise sum of v and other.
func (v NutrientVector) Add(other NutrientVector) NutrientVector {
	return NutrientVector{
		Energy:  v.Energy + other.Energy,
		Protein: v.Protein + other.Protein,
		Carbs:   v.Carbs + other.Carbs,
		Fat:     v.Fat + other.Fat,
	}
}

// Scale returns v multiplied by factor.
func (v NutrientVector) Scale(factor float64) NutrientVector {
	return NutrientVector{
		Energy:  v.Energy * factor,
		Protein: v.Protein * factor,
		Carbs:   v.Carbs * factor,
		Fat:     v.Fat * factor,
	}
}

// ReferenceProduct is one entry from the reference nutrient database.
// Records are immutable once loaded into the index.
type ReferenceProduct struct {
	// ID is a stable slug assigned at index build time (e.g. "p0042137").
	ID string `json:"id" yaml:"id"`

	// NormalizedName is the product name after the same normalization
	// applied to parsed ingredient names.
	NormalizedName string `json:"normalized_name" yaml:"normalized_name"`

	// Per100g holds nutrients per 100 g of product. Fields missing from
	// the source row are zero with Complete set false.
	Per100g NutrientVector `json:"per_100g" yaml:"per_100g"`

	// Complete reports whether all four nutrient fields were present in
	// the source row. Match tie-breaking prefers complete products.
	Complete bool `json:"complete" yaml:"complete"`
}

// MatchResult pairs a parsed ingredient with its best reference product.
// A nil Product means the ingredient is unmatched; Score is meaningless
// in that case.
type MatchResult struct {
	Product *ReferenceProduct `json:"product,omitempty" yaml:"product,omitempty"`

	// Score is the string similarity in [0,1] that selected Product.
	Score float64 `json:"score" yaml:"score"`
}

// Matched reports whether a reference product was accepted.
func (m MatchResult) Matched() bool {
	return m.Product != nil
}

// RecipeNutritionProfile is the aggregated nutrition for one recipe.
// Profiles are derived values: they are recomputed from a (ParsedIngredient,
// MatchResult) set, never mutated in place.
type RecipeNutritionProfile struct {
	RecipeID string `json:"recipe_id" yaml:"recipe_id"`

	// Totals holds the summed nutrients over all matched ingredients.
	Totals NutrientVector `json:"totals" yaml:"totals"`

	// Servings is the declared serving count, at least 1.
	Servings int `json:"servings" yaml:"servings"`

	// PerServing is Totals divided by Servings.
	PerServing NutrientVector `json:"per_serving" yaml:"per_serving"`

	// CoverageRatio is matched ingredients over total ingredients, in [0,1].
	CoverageRatio float64 `json:"coverage_ratio" yaml:"coverage_ratio"`
}

// MealStat holds the per-meal mean and spread of one nutrient in the
// benchmark population.
type MealStat struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// BenchmarkStats holds per-meal intake statistics derived once from the
// independent dietary survey (daily intake divided by meals per day).
type BenchmarkStats struct {
	Energy  MealStat `json:"energy" yaml:"energy"`
	Protein MealStat `json:"protein" yaml:"protein"`
	Carbs   MealStat `json:"carbs" yaml:"carbs"`
	Fat     MealStat `json:"fat" yaml:"fat"`

	// Respondents is the number of survey rows the stats were derived from.
	Respondents int `json:"respondents" yaml:"respondents"`
}

// Verdict is the plausibility outcome for one profile.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFlagged Verdict = "flagged"
)

// ReasonCode explains why a profile was flagged.
type ReasonCode string

const (
	ReasonEnergyOutlier  ReasonCode = "energy_outlier"
	ReasonProteinOutlier ReasonCode = "protein_outlier"
	ReasonCarbsOutlier   ReasonCode = "carbs_outlier"
	ReasonFatOutlier     ReasonCode = "fat_outlier"
	ReasonLowCoverage    ReasonCode = "low_coverage"
	ReasonNoMatch        ReasonCode = "no_match"
)
