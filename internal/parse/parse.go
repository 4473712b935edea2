// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns raw recipe ingredient lines into structured
// ParsedIngredient records: an optional quantity, an optional canonical
// unit, stripped descriptor words, and a normalized name.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/nutrigen/internal/tables"
	"github.com/pdiddy/nutrigen/pkg/types"
)

// ParseFailure reports a line with no usable ingredient text. It is the
// only failure mode; missing quantities or units degrade gracefully.
type ParseFailure struct {
	Line string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("no usable ingredient text in %q", e.Line)
}

// Parser converts raw ingredient lines using one table set and range
// policy. Safe for concurrent use; it holds no mutable state.
type Parser struct {
	cfg    types.ParserConfig
	tables *tables.Set
}

// New returns a Parser over the given configuration and table set.
func New(cfg types.ParserConfig, ts *tables.Set) *Parser {
	if cfg.RangePolicy == "" {
		cfg.RangePolicy = types.RangeMidpoint
	}
	return &Parser{cfg: cfg, tables: ts}
}

var parenPattern = regexp.MustCompile(`\(([^)]*)\)`)

// Parse converts one raw ingredient line. The returned record is
// immutable; callers re-running matching never alter it.
//
// Parenthetical policy: an annotation like "(8 ounce)" usually carries the
// precise measurement, so when one parses as quantity+unit it overrides
// the unit of the leading expression, and a bare leading count multiplies
// it: "2 (8 ounce) cans" resolves to 16 oz.
func (p *Parser) Parse(line string) (types.ParsedIngredient, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return types.ParsedIngredient{}, &ParseFailure{Line: line}
	}

	// Pull out parenthetical annotations; the first one that parses as a
	// quantity+unit becomes the override candidate. All parentheticals
	// are removed from the remainder either way.
	var parenQty *float64
	var parenUnit string
	rest := parenPattern.ReplaceAllStringFunc(trimmed, func(m string) string {
		if parenQty == nil {
			inner := strings.Trim(m, "()")
			if q, unit, ok := p.quantityUnit(inner); ok {
				parenQty = &q
				parenUnit = unit
			}
		}
		return " "
	})

	toks := tokenize(rest)

	qty, toks := p.leadingQuantity(toks)

	var unit string
	if len(toks) > 0 {
		if code, ok := p.tables.ResolveUnit(toks[0]); ok {
			unit = code
			toks = toks[1:]
		}
	}

	// Apply the parenthetical override. A mass or volume annotation beats
	// a unitless or count-unit leading expression; the leading count
	// multiplies the annotated quantity.
	if parenQty != nil && p.countsAsPackage(unit) {
		mult := 1.0
		if qty != nil {
			mult = *qty
		}
		q := mult * *parenQty
		qty = &q
		unit = parenUnit
	}

	name, descriptor := p.normalizeName(toks)
	if !hasLetter(name) {
		return types.ParsedIngredient{}, &ParseFailure{Line: line}
	}

	return types.ParsedIngredient{
		Quantity:   qty,
		Unit:       unit,
		Descriptor: descriptor,
		Name:       name,
	}, nil
}

// countsAsPackage reports whether unit is absent or a count unit, i.e. a
// package-style measure a parenthetical annotation should override.
func (p *Parser) countsAsPackage(unit string) bool {
	if unit == "" {
		return true
	}
	u, ok := p.tables.Unit(unit)
	return ok && u.Kind == tables.KindCount
}

// quantityUnit parses text of the form "<number> <unit>", as found inside
// parenthetical annotations.
func (p *Parser) quantityUnit(s string) (float64, string, bool) {
	toks := tokenize(s)
	qty, rest := p.leadingQuantity(toks)
	if qty == nil || len(rest) == 0 {
		return 0, "", false
	}
	code, ok := p.tables.ResolveUnit(rest[0])
	if !ok {
		return 0, "", false
	}
	return *qty, code, true
}

// normalizeName splits the residual tokens into descriptor words (those on
// the stopword list) and the normalized name: lowercased, punctuation
// stripped, whitespace collapsed, simple plurals singularized.
func (p *Parser) normalizeName(toks []string) (name, descriptor string) {
	var kept, stripped []string
	for _, t := range toks {
		w := strings.ToLower(strings.Trim(t, ",.;:!*\"'"))
		if !hasAlnum(w) {
			continue
		}
		if p.tables.IsStopword(w) {
			stripped = append(stripped, w)
			continue
		}
		kept = append(kept, singularize(w))
	}
	return strings.Join(kept, " "), strings.Join(stripped, " ")
}

// singularize reduces simple English plurals. It is intentionally crude;
// the reference index applies the identical rule so both sides agree.
func singularize(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") ||
		strings.HasSuffix(w, "xes")):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	}
	return w
}

// NormalizeName applies the parser's name normalization to free text.
// The reference index calls this at build time so product names and
// ingredient names normalize identically.
func (p *Parser) NormalizeName(s string) string {
	name, _ := p.normalizeName(tokenize(s))
	return name
}

func tokenize(s string) []string {
	return strings.Fields(strings.ReplaceAll(s, "-", " - "))
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// hasAlnum reports whether s contains a letter or digit; bare punctuation
// tokens are dropped from names.
func hasAlnum(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
