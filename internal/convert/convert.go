// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert resolves parsed ingredient quantities to mass and
// aggregates matched nutrients into per-recipe profiles. Mass units
// convert directly to grams; volume units convert through an
// ingredient-category density; anything unresolved falls back to a
// configured mass rather than failing, recorded as a data-quality
// warning.
package convert

import (
	"fmt"
	"io"

	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/pkg/types"
)

const defaultFallbackMass = 100

// Converter resolves ingredient masses against one table set. Safe for
// concurrent use; it holds no mutable state.
type Converter struct {
	fallbackMass float64
	tables       *tables.Set
}

// New returns a Converter for the given configuration and table set.
func New(cfg types.ConvertConfig, ts *tables.Set) *Converter {
	fm := cfg.FallbackMassGrams
	if fm <= 0 {
		fm = defaultFallbackMass
	}
	return &Converter{fallbackMass: fm, tables: ts}
}

// MassGrams resolves one parsed ingredient to grams. The second return
// reports whether the conversion was fully resolved; false means the
// fallback mass was applied for quantity, unit, or density.
func (c *Converter) MassGrams(ing types.ParsedIngredient) (float64, bool) {
	if ing.Quantity == nil {
		return c.fallbackMass, false
	}
	qty := *ing.Quantity

	// No unit: a count of items with no gram equivalent. Scale the
	// fallback mass by the count so "3 apples" outweighs "1 apple".
	if ing.Unit == "" {
		return qty * c.fallbackMass, false
	}

	u, ok := c.tables.Unit(ing.Unit)
	if !ok {
		return qty * c.fallbackMass, false
	}

	switch u.Kind {
	case tables.KindMass:
		return qty * u.ToBase, true
	case tables.KindVolume:
		density, ok := c.tables.Density(ing.Name)
		if !ok {
			return c.fallbackMass, false
		}
		return qty * u.ToBase * density, true
	default: // count
		if u.ToBase > 0 {
			return qty * u.ToBase, true
		}
		return qty * c.fallbackMass, false
	}
}

// Aggregate derives a fresh RecipeNutritionProfile from one recipe's
// parsed ingredients and their match results. Matched ingredients
// contribute nutrients_per_100g scaled by mass/100; unmatched ones
// contribute zero and lower the coverage ratio. Conversion fallbacks are
// reported on w as warnings.
func (c *Converter) Aggregate(recipeID string, ings []types.ParsedIngredient, matches []types.MatchResult, servings int, w io.Writer) types.RecipeNutritionProfile {
	if servings < 1 {
		servings = 1
	}

	var totals types.NutrientVector
	matched := 0
	for i, m := range matches {
		if !m.Matched() {
			continue
		}
		matched++

		mass, resolved := c.MassGrams(ings[i])
		if !resolved {
			fmt.Fprintf(w, "warning: %s %q unresolved conversion, using %.0fg\n",
				recipeID, ings[i].Name, mass)
		}
		totals = totals.Add(m.Product.Per100g.Scale(mass / 100))
	}

	coverage := 0.0
	if len(matches) > 0 {
		coverage = float64(matched) / float64(len(matches))
	}

	return types.RecipeNutritionProfile{
		RecipeID:      recipeID,
		Totals:        totals,
		Servings:      servings,
		PerServing:    totals.Scale(1 / float64(servings)),
		CoverageRatio: coverage,
	}
}
