// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strconv"
	"strings"

	"github.com/pdiddy/nutrigen/pkg/types"
)

// unicodeFractions maps fraction glyphs to their values.
var unicodeFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8,
	'⅙': 1.0 / 6, '⅚': 5.0 / 6,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// leadingQuantity consumes a numeric expression from the front of toks:
// decimals, simple fractions, mixed numbers, unicode fraction glyphs, and
// ranges ("1-2", "1 to 2"). A range resolves to one value under the
// configured policy; the default is the midpoint. Returns nil and the
// tokens unchanged when no quantity is present.
func (p *Parser) leadingQuantity(toks []string) (*float64, []string) {
	if len(toks) == 0 {
		return nil, toks
	}

	first, ok := parseNumber(toks[0])
	if !ok || first < 0 {
		return nil, toks
	}
	i := 1

	// Mixed number: "1 1/2", "1 ½".
	if i < len(toks) {
		if frac, ok := parseFraction(toks[i]); ok {
			first += frac
			i++
		}
	}

	// Range: "1 - 2" (tokenized from "1-2") or "1 to 2".
	if i+1 < len(toks) && (toks[i] == "-" || strings.EqualFold(toks[i], "to")) {
		if second, ok := parseNumber(toks[i+1]); ok && second >= 0 {
			i += 2
			if i < len(toks) {
				if frac, ok := parseFraction(toks[i]); ok {
					second += frac
					i++
				}
			}
			v := resolveRange(first, second, p.cfg.RangePolicy)
			return &v, toks[i:]
		}
	}

	return &first, toks[i:]
}

// resolveRange collapses a quantity range to one representative value.
func resolveRange(lo, hi float64, policy types.RangePolicy) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	switch policy {
	case types.RangeLow:
		return lo
	case types.RangeHigh:
		return hi
	default:
		return (lo + hi) / 2
	}
}

// parseNumber parses a token as a decimal, fraction, glyph, or a digit run
// with a trailing fraction glyph ("1½").
func parseNumber(tok string) (float64, bool) {
	if tok == "" {
		return 0, false
	}

	// Trailing unicode fraction glyph, with or without a leading integer.
	runes := []rune(tok)
	if frac, ok := unicodeFractions[runes[len(runes)-1]]; ok {
		head := string(runes[:len(runes)-1])
		if head == "" {
			return frac, true
		}
		base, err := strconv.ParseFloat(head, 64)
		if err != nil {
			return 0, false
		}
		return base + frac, true
	}

	if frac, ok := parseSlashFraction(tok); ok {
		return frac, true
	}

	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseFraction parses tokens that are only fractions ("1/2", "½"); used
// for the fractional part of a mixed number.
func parseFraction(tok string) (float64, bool) {
	runes := []rune(tok)
	if len(runes) == 1 {
		if frac, ok := unicodeFractions[runes[0]]; ok {
			return frac, true
		}
	}
	return parseSlashFraction(tok)
}

func parseSlashFraction(tok string) (float64, bool) {
	num, den, found := strings.Cut(tok, "/")
	if !found {
		return 0, false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}
