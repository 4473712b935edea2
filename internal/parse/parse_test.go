package parse

import (
	"errors"
	"testing"

	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/pkg/types"
)

func newTestParser(policy types.RangePolicy) *Parser {
	return New(types.ParserConfig{RangePolicy: policy}, tables.Default())
}

func qty(v float64) *float64 { return &v }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want types.ParsedIngredient
	}{
		{
			name: "parenthetical overrides leading count",
			line: "1 (8 ounce) can crushed pineapple, drained",
			want: types.ParsedIngredient{
				Quantity:   qty(8),
				Unit:       "oz",
				Descriptor: "drained",
				Name:       "crushed pineapple",
			},
		},
		{
			name: "leading count multiplies parenthetical",
			line: "2 (8 ounce) cans tomato sauce",
			want: types.ParsedIngredient{
				Quantity: qty(16),
				Unit:     "oz",
				Name:     "tomato sauce",
			},
		},
		{
			name: "plain quantity and unit",
			line: "2 cups flour",
			want: types.ParsedIngredient{Quantity: qty(2), Unit: "cup", Name: "flour"},
		},
		{
			name: "mixed number",
			line: "1 1/2 tablespoons olive oil",
			want: types.ParsedIngredient{Quantity: qty(1.5), Unit: "tbsp", Name: "olive oil"},
		},
		{
			name: "unicode fraction",
			line: "½ cup milk",
			want: types.ParsedIngredient{Quantity: qty(0.5), Unit: "cup", Name: "milk"},
		},
		{
			name: "attached unicode fraction",
			line: "1½ cups sugar",
			want: types.ParsedIngredient{Quantity: qty(1.5), Unit: "cup", Name: "sugar"},
		},
		{
			name: "no quantity",
			line: "salt to taste",
			want: types.ParsedIngredient{Descriptor: "to taste", Name: "salt"},
		},
		{
			name: "count without unit singularizes",
			line: "2 eggs",
			want: types.ParsedIngredient{Quantity: qty(2), Name: "egg"},
		},
		{
			name: "descriptor words stripped in order",
			line: "1 cup onion, finely chopped",
			want: types.ParsedIngredient{
				Quantity:   qty(1),
				Unit:       "cup",
				Descriptor: "finely chopped",
				Name:       "onion",
			},
		},
		{
			name: "unit alias resolves",
			line: "3 tbs butter, melted",
			want: types.ParsedIngredient{
				Quantity:   qty(3),
				Unit:       "tbsp",
				Descriptor: "melted",
				Name:       "butter",
			},
		},
	}

	p := newTestParser(types.RangeMidpoint)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.line, err)
			}
			if (got.Quantity == nil) != (tt.want.Quantity == nil) {
				t.Fatalf("Parse(%q) quantity presence = %v, want %v", tt.line, got.Quantity, tt.want.Quantity)
			}
			if got.Quantity != nil && !approxEqual(*got.Quantity, *tt.want.Quantity) {
				t.Errorf("Parse(%q) quantity = %v, want %v", tt.line, *got.Quantity, *tt.want.Quantity)
			}
			if got.Unit != tt.want.Unit {
				t.Errorf("Parse(%q) unit = %q, want %q", tt.line, got.Unit, tt.want.Unit)
			}
			if got.Name != tt.want.Name {
				t.Errorf("Parse(%q) name = %q, want %q", tt.line, got.Name, tt.want.Name)
			}
			if got.Descriptor != tt.want.Descriptor {
				t.Errorf("Parse(%q) descriptor = %q, want %q", tt.line, got.Descriptor, tt.want.Descriptor)
			}
		})
	}
}

func TestParseRangePolicies(t *testing.T) {
	tests := []struct {
		policy types.RangePolicy
		line   string
		want   float64
	}{
		{types.RangeMidpoint, "1-2 cups flour", 1.5},
		{types.RangeLow, "1-2 cups flour", 1},
		{types.RangeHigh, "1-2 cups flour", 2},
		{types.RangeMidpoint, "2 to 3 cups flour", 2.5},
		{types.RangeMidpoint, "1/2 - 1 cup water", 0.75},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy)+" "+tt.line, func(t *testing.T) {
			p := newTestParser(tt.policy)
			got, err := p.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.line, err)
			}
			if got.Quantity == nil || !approxEqual(*got.Quantity, tt.want) {
				t.Errorf("Parse(%q) quantity = %v, want %v", tt.line, got.Quantity, tt.want)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	p := newTestParser(types.RangeMidpoint)
	line := "1-2 cups flour"

	first, err := p.Parse(line)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := p.Parse(line)
		if err != nil {
			t.Fatalf("Parse error on run %d: %v", i, err)
		}
		if *got.Quantity != *first.Quantity || got.Unit != first.Unit || got.Name != first.Name {
			t.Fatalf("run %d produced %+v, first run produced %+v", i, got, first)
		}
	}
}

func TestParseFailure(t *testing.T) {
	p := newTestParser(types.RangeMidpoint)
	for _, line := range []string{"", "   ", "***", "2", "1/2"} {
		_, err := p.Parse(line)
		var pf *ParseFailure
		if !errors.As(err, &pf) {
			t.Errorf("Parse(%q) error = %v, want ParseFailure", line, err)
		}
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"eggs", "egg"},
		{"berries", "berry"},
		{"peaches", "peach"},
		{"radishes", "radish"},
		{"boxes", "box"},
		{"molasses", "molasses"},
		{"asparagus", "asparagus"},
		{"peas", "pea"},
		{"rice", "rice"},
	}
	for _, tt := range tests {
		if got := singularize(tt.in); got != tt.want {
			t.Errorf("singularize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	p := newTestParser(types.RangeMidpoint)
	tests := []struct{ in, want string }{
		{"Tomato Sauce", "tomato sauce"},
		{"  Chopped   Fresh Basil ", "basil"},
		{"All-Purpose Flour", "all purpose flour"},
	}
	for _, tt := range tests {
		if got := p.NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
