// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/nutrigen/internal/convert"
	"github.com/pdiddy/nutrigen/internal/match"
	"github.com/pdiddy/nutrigen/internal/parse"
	"github.com/pdiddy/nutrigen/internal/refindex"
	"github.com/pdiddy/nutrigen/internal/validate"
	"github.com/pdiddy/nutrigen/pkg/types"
)

const defaultWorkers = 4

// Runner holds the immutable stage dependencies for one pipeline run.
// All fields are read-only during Run, so workers share them without
// locking.
type Runner struct {
	Parser       *parse.Parser
	Index        *refindex.Index
	Matcher      *match.Matcher
	Converter    *convert.Converter
	Validator    *validate.Validator
	Store        *Store
	TableVersion string

	// Workers is the number of concurrent recipe workers (default 4).
	Workers int
}

// RunSummary holds counts from one pipeline run.
type RunSummary struct {
	Processed int
	Skipped   int
	Accepted  int
	Flagged   int
	Failed    int
}

// Total returns the number of recipes considered.
func (s RunSummary) Total() int {
	return s.Processed + s.Skipped
}

// Run processes the corpus: parse, match, aggregate, validate, store.
// Recipes already present in the results store are skipped, which makes
// an interrupted run resumable. Individual recipe failures are counted
// and retained; they never abort the batch.
func (r *Runner) Run(ctx context.Context, recipes []types.Recipe, w io.Writer) (RunSummary, error) {
	done, err := r.Store.Completed(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	var summary RunSummary
	var pending []types.Recipe
	for _, rec := range recipes {
		if done[rec.ID] {
			summary.Skipped++
			continue
		}
		pending = append(pending, rec)
	}
	if summary.Skipped > 0 {
		fmt.Fprintf(w, "resuming: %d recipe(s) already processed\n", summary.Skipped)
	}

	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	jobs := make(chan types.Recipe)
	outcomes := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				outcomes <- r.process(ctx, rec)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, rec := range pending {
			select {
			case <-ctx.Done():
				return
			case jobs <- rec:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single writer: workers never touch the store directly.
	var storeErr error
	for o := range outcomes {
		summary.Processed++

		if storeErr == nil {
			storeErr = r.Store.Put(ctx, o)
		}

		for _, warning := range o.Warnings {
			fmt.Fprintln(w, warning)
		}

		switch {
		case o.Err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", o.Recipe.ID, o.Err)
			summary.Failed++
		case o.Result.Verdict == types.VerdictFlagged:
			fmt.Fprintf(w, "flagged %s (%s)\n", o.Recipe.ID, reasonList(o.Result.Reasons))
			summary.Flagged++
		default:
			fmt.Fprintf(w, "pass    %s (coverage %.2f)\n", o.Recipe.ID, o.Profile.CoverageRatio)
			summary.Accepted++
		}
	}

	fmt.Fprintf(w, "\nprocessed: %d, skipped: %d, accepted: %d, flagged: %d, failed: %d\n",
		summary.Processed, summary.Skipped, summary.Accepted, summary.Flagged, summary.Failed)

	if storeErr != nil {
		return summary, storeErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// process runs one recipe through every stage. All inputs are resolved
// before aggregation and validation run; nothing blocks on I/O
// mid-computation except the bounded index candidate queries.
func (r *Runner) process(ctx context.Context, rec types.Recipe) Outcome {
	o := Outcome{Recipe: rec, TableVersion: r.TableVersion}

	ings := make([]types.ParsedIngredient, len(rec.Ingredients))
	matches := make([]types.MatchResult, len(rec.Ingredients))

	for i, line := range rec.Ingredients {
		ing, err := r.Parser.Parse(line)
		if err != nil {
			// Unusable text lowers coverage but never blocks the recipe.
			var pf *parse.ParseFailure
			if errors.As(err, &pf) {
				o.ParseFailures++
				continue
			}
			o.Err = err
			return o
		}
		ings[i] = ing

		candidates, err := r.Index.Candidates(ctx, ing.Name)
		if err != nil {
			o.Err = fmt.Errorf("querying index for %q: %w", ing.Name, err)
			return o
		}
		matches[i] = r.Matcher.Best(ing.Name, candidates)
	}

	var warnings strings.Builder
	o.Profile = r.Converter.Aggregate(rec.ID, ings, matches, rec.Servings, &warnings)
	if warnings.Len() > 0 {
		o.Warnings = strings.Split(strings.TrimRight(warnings.String(), "\n"), "\n")
	}

	o.Result = r.Validator.Validate(o.Profile)
	return o
}

func reasonList(reasons []types.ReasonCode) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
