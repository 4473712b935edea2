// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrigen/pkg/types"
)

// CleanRecord is one accepted recipe in the clean dataset. This schema is
// the entire contract owed to downstream consumers.
type CleanRecord struct {
	RecipeID      string               `json:"recipe_id"`
	PerServing    types.NutrientVector `json:"per_serving"`
	CoverageRatio float64              `json:"coverage_ratio"`
	Verdict       types.Verdict        `json:"verdict"`
}

// DiagnosticRecord is one rejected recipe retained for inspection.
// Rejected recipes are never silently dropped.
type DiagnosticRecord struct {
	RecipeID      string             `yaml:"recipe_id"`
	Title         string             `yaml:"title"`
	Verdict       types.Verdict      `yaml:"verdict,omitempty"`
	Reasons       []types.ReasonCode `yaml:"reasons,omitempty"`
	CoverageRatio float64            `yaml:"coverage_ratio"`
	ParseFailures int                `yaml:"parse_failures,omitempty"`
	Warnings      []string           `yaml:"warnings,omitempty"`
	Error         string             `yaml:"error,omitempty"`
}

// diagnosticsFile wraps the diagnostics with the table version that
// produced them.
type diagnosticsFile struct {
	TableVersion string             `yaml:"table_version"`
	Recipes      []DiagnosticRecord `yaml:"recipes"`
}

// ExportClean writes the clean dataset to resultsDir/clean.json: one
// record per accepted recipe, ordered by recipe ID so identical runs
// produce byte-identical output. Recipes with zero coverage never appear
// regardless of verdict.
func (s *Store) ExportClean(ctx context.Context) (int, error) {
	rows, err := s.rowsOrdered(ctx)
	if err != nil {
		return 0, err
	}

	clean := make([]CleanRecord, 0, len(rows))
	for _, r := range rows {
		if r.Error != "" || r.Verdict != types.VerdictPass || r.Coverage == 0 {
			continue
		}
		clean = append(clean, CleanRecord{
			RecipeID:      r.RecipeID,
			PerServing:    r.PerServing,
			CoverageRatio: r.Coverage,
			Verdict:       r.Verdict,
		})
	}

	data, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling clean dataset: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(s.dir, "clean.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing clean dataset: %w", err)
	}
	return len(clean), nil
}

// ExportDiagnostics writes flagged and failed recipes with their reason
// codes to resultsDir/diagnostics.yaml.
func (s *Store) ExportDiagnostics(ctx context.Context) (int, error) {
	rows, err := s.rowsOrdered(ctx)
	if err != nil {
		return 0, err
	}

	out := diagnosticsFile{}
	for _, r := range rows {
		if out.TableVersion == "" {
			out.TableVersion = r.TableVersion
		}
		if r.Error == "" && r.Verdict == types.VerdictPass && r.Coverage > 0 {
			continue
		}
		out.Recipes = append(out.Recipes, DiagnosticRecord{
			RecipeID:      r.RecipeID,
			Title:         r.Title,
			Verdict:       r.Verdict,
			Reasons:       r.Reasons,
			CoverageRatio: r.Coverage,
			ParseFailures: r.ParseFailures,
			Warnings:      r.Warnings,
			Error:         r.Error,
		})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return 0, fmt.Errorf("marshaling diagnostics: %w", err)
	}

	path := filepath.Join(s.dir, "diagnostics.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing diagnostics: %w", err)
	}
	return len(out.Recipes), nil
}
