// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match selects the best reference product for a parsed
// ingredient name using a token-order-insensitive similarity over edit
// distance. Matching is deterministic: identical inputs and table version
// always produce the identical result.
package match

import (
	"sort"
	"strings"

	"github.com/pdiddy/nutrigen/pkg/types"
)

const defaultThreshold = 0.72

// Matcher scores candidates against an acceptance threshold. The
// threshold is the single knob trading coverage against false matches.
type Matcher struct {
	threshold float64
}

// New returns a Matcher for the given configuration.
func New(cfg types.MatchConfig) *Matcher {
	t := cfg.Threshold
	if t <= 0 {
		t = defaultThreshold
	}
	return &Matcher{threshold: t}
}

// Best returns the highest-scoring candidate, or an unmatched result when
// no candidate clears the threshold. Ties prefer the candidate with fully
// populated nutrient fields, then the smallest product ID.
func (m *Matcher) Best(name string, candidates []types.ReferenceProduct) types.MatchResult {
	var best *types.ReferenceProduct
	bestScore := 0.0

	query := tokenSort(name)
	for i := range candidates {
		c := &candidates[i]
		score := ratio(query, tokenSort(c.NormalizedName))
		switch {
		case best == nil || score > bestScore:
			best = c
			bestScore = score
		case score == bestScore && betterTie(c, best):
			best = c
		}
	}

	if best == nil || bestScore < m.threshold {
		return types.MatchResult{}
	}
	return types.MatchResult{Product: best, Score: bestScore}
}

// betterTie reports whether a should replace b at equal score.
func betterTie(a, b *types.ReferenceProduct) bool {
	if a.Complete != b.Complete {
		return a.Complete
	}
	return a.ID < b.ID
}

// Similarity returns the token-sort ratio between two normalized names,
// in [0,1]. Token order is irrelevant: "sauce tomato" and "tomato sauce"
// score 1.0.
func Similarity(a, b string) float64 {
	return ratio(tokenSort(a), tokenSort(b))
}

// tokenSort rebuilds a string from its whitespace tokens in sorted order.
func tokenSort(s string) string {
	toks := strings.Fields(s)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// ratio converts edit distance to a similarity in [0,1].
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
