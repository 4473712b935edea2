// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ParsedIngredient is the structured form of one raw ingredient line.
// Records are immutable once produced by the parser; re-running matching
// against a different index version never alters them.
type ParsedIngredient struct {
	// Quantity is the extracted amount, nil when no numeric expression
	// was found. Non-negative when present.
	Quantity *float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`

	// Unit is the canonical unit code ("cup", "oz", ...). Empty means no
	// unit matched and the ingredient is treated as a count.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Descriptor holds the preparatory words stripped from the line
	// ("drained", "chopped"), space-joined in source order.
	Descriptor string `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`

	// Name is the normalized ingredient name: lowercased, whitespace
	// collapsed, simple plurals singularized.
	Name string `json:"name" yaml:"name"`
}

// Recipe is one record from the recipe corpus.
type Recipe struct {
	// ID is a stable slug derived from the corpus row ("r000042").
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	// Ingredients are the raw ingredient lines in source order.
	Ingredients []string `json:"ingredients" yaml:"ingredients"`

	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`

	// Servings is the declared serving count; 1 when the source row had
	// none (recorded as a warning at load time).
	Servings int `json:"servings" yaml:"servings"`
}

// SurveyRecord is one respondent's daily intake from the benchmark survey.
type SurveyRecord struct {
	EnergyKcal float64
	ProteinG   float64
	CarbsG     float64
	FatG       float64
}
