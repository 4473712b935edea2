// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate derives per-meal benchmark statistics from the
// independent dietary survey and flags implausible recipe profiles
// against them. Validation annotates profiles with a verdict; it never
// mutates them.
package validate

import (
	"fmt"
	"math"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrigen/pkg/types"
)

const (
	defaultMealsPerDay  = 3
	defaultLowMultiple  = 0.2
	defaultHighMultiple = 3.0
	defaultMinCoverage  = 0.4
)

// DeriveBenchmark computes per-meal mean and spread for each nutrient
// from per-respondent daily intake, dividing by mealsPerDay. An empty
// record set is an error; stats must come from real survey data.
func DeriveBenchmark(records []types.SurveyRecord, mealsPerDay int) (types.BenchmarkStats, error) {
	if len(records) == 0 {
		return types.BenchmarkStats{}, fmt.Errorf("no survey records to derive benchmark from")
	}
	if mealsPerDay < 1 {
		mealsPerDay = defaultMealsPerDay
	}

	meals := float64(mealsPerDay)
	energy := make([]float64, len(records))
	protein := make([]float64, len(records))
	carbs := make([]float64, len(records))
	fat := make([]float64, len(records))
	for i, r := range records {
		energy[i] = r.EnergyKcal / meals
		protein[i] = r.ProteinG / meals
		carbs[i] = r.CarbsG / meals
		fat[i] = r.FatG / meals
	}

	return types.BenchmarkStats{
		Energy:      meanStd(energy),
		Protein:     meanStd(protein),
		Carbs:       meanStd(carbs),
		Fat:         meanStd(fat),
		Respondents: len(records),
	}, nil
}

func meanStd(values []float64) types.MealStat {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return types.MealStat{Mean: mean, StdDev: math.Sqrt(sq / float64(len(values)))}
}

// SaveStats writes benchmark stats to a YAML file.
func SaveStats(path string, stats types.BenchmarkStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling benchmark stats: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadStats reads benchmark stats from a YAML file.
func LoadStats(path string) (types.BenchmarkStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BenchmarkStats{}, fmt.Errorf("reading benchmark stats: %w", err)
	}
	var stats types.BenchmarkStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return types.BenchmarkStats{}, fmt.Errorf("parsing benchmark stats: %w", err)
	}
	if stats.Respondents == 0 {
		return types.BenchmarkStats{}, fmt.Errorf("benchmark stats at %s were derived from no respondents", path)
	}
	return stats, nil
}

// Result is the validator's annotation for one profile.
type Result struct {
	Verdict types.Verdict      `json:"verdict" yaml:"verdict"`
	Reasons []types.ReasonCode `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// Validator checks profiles against benchmark bounds.
type Validator struct {
	cfg   types.ValidateConfig
	stats types.BenchmarkStats
}

// New returns a Validator, filling zero config fields with defaults.
func New(cfg types.ValidateConfig, stats types.BenchmarkStats) *Validator {
	if cfg.LowMultiple <= 0 {
		cfg.LowMultiple = defaultLowMultiple
	}
	if cfg.HighMultiple <= 0 {
		cfg.HighMultiple = defaultHighMultiple
	}
	if cfg.MinCoverage <= 0 {
		cfg.MinCoverage = defaultMinCoverage
	}
	return &Validator{cfg: cfg, stats: stats}
}

// Validate flags a profile whose per-serving nutrients fall outside the
// configured multiples of the benchmark per-meal mean, or whose coverage
// is too low. A coverage of zero always flags: zero totals are
// indistinguishable from no data and must never pass as valid.
func (v *Validator) Validate(p types.RecipeNutritionProfile) Result {
	var reasons []types.ReasonCode

	if p.CoverageRatio == 0 {
		reasons = append(reasons, types.ReasonNoMatch)
	} else if p.CoverageRatio < v.cfg.MinCoverage {
		reasons = append(reasons, types.ReasonLowCoverage)
	}

	checks := []struct {
		value  float64
		stat   types.MealStat
		reason types.ReasonCode
	}{
		{p.PerServing.Energy, v.stats.Energy, types.ReasonEnergyOutlier},
		{p.PerServing.Protein, v.stats.Protein, types.ReasonProteinOutlier},
		{p.PerServing.Carbs, v.stats.Carbs, types.ReasonCarbsOutlier},
		{p.PerServing.Fat, v.stats.Fat, types.ReasonFatOutlier},
	}
	for _, c := range checks {
		lo := v.cfg.LowMultiple * c.stat.Mean
		hi := v.cfg.HighMultiple * c.stat.Mean
		if c.value < lo || c.value > hi {
			reasons = append(reasons, c.reason)
		}
	}

	if len(reasons) > 0 {
		return Result{Verdict: types.VerdictFlagged, Reasons: reasons}
	}
	return Result{Verdict: types.VerdictPass}
}
