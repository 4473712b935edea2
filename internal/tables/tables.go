// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tables holds the static configuration tables the pipeline
// depends on: canonical unit definitions and aliases, ingredient density
// classes, and the descriptor stopword list. A Set is immutable after
// load and carries a version string recorded in pipeline outputs so that
// profiles can be tied to the exact table set that produced them.
package tables

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// UnitKind classifies a canonical unit.
type UnitKind string

const (
	// KindMass units convert directly to grams.
	KindMass UnitKind = "mass"

	// KindVolume units convert to milliliters, then to grams via a
	// density class.
	KindVolume UnitKind = "volume"

	// KindCount units are discrete items; ToBase is a gram equivalent,
	// zero when none is known.
	KindCount UnitKind = "count"
)

// Unit defines one canonical unit. ToBase is grams for mass and count
// units, milliliters for volume units.
type Unit struct {
	Kind   UnitKind `yaml:"kind"`
	ToBase float64  `yaml:"to_base"`
}

// Set is one versioned collection of lookup tables.
type Set struct {
	// Version identifies the table set; it is recorded alongside every
	// export so results can be reproduced.
	Version string `yaml:"version"`

	// Units maps canonical unit codes to their definitions.
	Units map[string]Unit `yaml:"units"`

	// Aliases maps spelling variants ("tbsp", "tablespoons") to
	// canonical unit codes.
	Aliases map[string]string `yaml:"aliases"`

	// Densities maps ingredient keywords to g/ml density classes used
	// for volume-to-mass conversion.
	Densities map[string]float64 `yaml:"densities"`

	// Stopwords lists preparatory/descriptor words stripped from
	// ingredient names.
	Stopwords []string `yaml:"stopwords"`

	stopSet map[string]bool
}

// Default returns the built-in table set.
func Default() *Set {
	s := &Set{
		Version: "builtin-1",
		Units: map[string]Unit{
			// mass, grams per unit
			"g":  {Kind: KindMass, ToBase: 1},
			"kg": {Kind: KindMass, ToBase: 1000},
			"mg": {Kind: KindMass, ToBase: 0.001},
			"oz": {Kind: KindMass, ToBase: 28.349523125},
			"lb": {Kind: KindMass, ToBase: 453.59237},

			// volume, milliliters per unit
			"ml":     {Kind: KindVolume, ToBase: 1},
			"l":      {Kind: KindVolume, ToBase: 1000},
			"tsp":    {Kind: KindVolume, ToBase: 4.92892159375},
			"tbsp":   {Kind: KindVolume, ToBase: 14.78676478125},
			"cup":    {Kind: KindVolume, ToBase: 236.5882365},
			"fl-oz":  {Kind: KindVolume, ToBase: 29.5735295625},
			"pint":   {Kind: KindVolume, ToBase: 473.176473},
			"quart":  {Kind: KindVolume, ToBase: 946.352946},
			"gallon": {Kind: KindVolume, ToBase: 3785.411784},
			"dash":   {Kind: KindVolume, ToBase: 0.6},
			"pinch":  {Kind: KindVolume, ToBase: 0.3},

			// count, gram equivalents where known
			"each":  {Kind: KindCount, ToBase: 0},
			"can":   {Kind: KindCount, ToBase: 400},
			"clove": {Kind: KindCount, ToBase: 5},
			"stick": {Kind: KindCount, ToBase: 113},
			"slice": {Kind: KindCount, ToBase: 28},
		},
		Aliases: map[string]string{
			"gram": "g", "grams": "g", "gr": "g",
			"kilogram": "kg", "kilograms": "kg",
			"milligram": "mg", "milligrams": "mg",
			"ounce": "oz", "ounces": "oz",
			"pound": "lb", "pounds": "lb", "lbs": "lb",
			"milliliter": "ml", "milliliters": "ml",
			"liter": "l", "liters": "l", "litre": "l", "litres": "l",
			"teaspoon": "tsp", "teaspoons": "tsp", "t": "tsp",
			"tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp", "tb": "tbsp",
			"c": "cup", "cups": "cup",
			"pints": "pint", "pt": "pint",
			"quarts": "quart", "qt": "quart",
			"gallons": "gallon", "gal": "gallon",
			"dashes": "dash", "pinches": "pinch",
			"cans": "can", "cloves": "clove",
			"sticks": "stick", "slices": "slice",
			"fluid-ounce": "fl-oz", "fluid-ounces": "fl-oz",
		},
		Densities: map[string]float64{
			"flour":    0.53,
			"sugar":    0.85,
			"butter":   0.91,
			"oil":      0.91,
			"rice":     0.85,
			"oats":     0.41,
			"oat":      0.41,
			"honey":    1.42,
			"syrup":    1.42,
			"milk":     1.03,
			"cream":    1.01,
			"yogurt":   1.03,
			"water":    1.0,
			"broth":    1.0,
			"stock":    1.0,
			"juice":    1.05,
			"cheese":   0.55,
			"cocoa":    0.52,
			"salt":     1.22,
			"mayonnaise": 0.95,
			"ketchup":  1.14,
		},
		Stopwords: []string{
			"chopped", "diced", "minced", "sliced", "grated", "shredded",
			"crumbled", "cubed", "halved", "quartered", "mashed", "melted",
			"softened", "beaten", "peeled", "seeded", "trimmed", "rinsed",
			"drained", "packed", "divided", "thawed", "cooled",
			"cooked", "uncooked", "fresh", "frozen", "dried", "optional",
			"to", "taste", "plus", "more", "for", "garnish", "about",
			"approximately", "finely", "coarsely", "thinly", "roughly",
			"lightly", "firmly", "freshly", "large", "small", "medium",
			"and", "or", "of", "a", "an", "the", "into", "pieces", "needed",
			"as", "room", "temperature", "at",
		},
	}
	s.finalize()
	return s
}

// Load reads a complete table set from a YAML file. An empty path returns
// the built-in set.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table set %s: %w", path, err)
	}

	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing table set %s: %w", path, err)
	}
	if s.Version == "" {
		return nil, fmt.Errorf("table set %s has no version", path)
	}
	if len(s.Units) == 0 {
		return nil, fmt.Errorf("table set %s defines no units", path)
	}

	s.finalize()
	return &s, nil
}

func (s *Set) finalize() {
	s.stopSet = make(map[string]bool, len(s.Stopwords))
	for _, w := range s.Stopwords {
		s.stopSet[strings.ToLower(w)] = true
	}
}

// ResolveUnit maps a raw token to a canonical unit code. It reports false
// when the token is neither a canonical code nor a known alias.
func (s *Set) ResolveUnit(token string) (string, bool) {
	token = strings.ToLower(strings.Trim(token, "."))
	if _, ok := s.Units[token]; ok {
		return token, true
	}
	if code, ok := s.Aliases[token]; ok {
		return code, true
	}
	return "", false
}

// Unit returns the definition for a canonical unit code.
func (s *Set) Unit(code string) (Unit, bool) {
	u, ok := s.Units[code]
	return u, ok
}

// Density returns the g/ml density class for an ingredient name. The
// lookup matches any density keyword appearing as a token in the name.
func (s *Set) Density(name string) (float64, bool) {
	for _, tok := range strings.Fields(name) {
		if d, ok := s.Densities[tok]; ok {
			return d, true
		}
	}
	return 0, false
}

// IsStopword reports whether w is on the descriptor stopword list.
func (s *Set) IsStopword(w string) bool {
	return s.stopSet[strings.ToLower(w)]
}
