// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the per-recipe stages against the shared
// read-only reference index and persists outcomes in a SQLite results
// store. The store is also the checkpoint: a terminated run resumes by
// skipping recipe IDs already present.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nutrigen/internal/validate"
	"github.com/pdiddy/nutrigen/pkg/types"
)

const dbFile = "results.db"

// Outcome is the stored result of processing one recipe.
type Outcome struct {
	Recipe        types.Recipe
	Profile       types.RecipeNutritionProfile
	Result        validate.Result
	ParseFailures int
	Warnings      []string
	TableVersion  string

	// Err is set when processing failed outright; such outcomes are
	// counted and retained in diagnostics but carry no profile.
	Err error
}

// Accepted reports whether the outcome belongs in the clean dataset.
func (o Outcome) Accepted() bool {
	return o.Err == nil && o.Result.Verdict == types.VerdictPass
}

// Store persists outcomes in resultsDir/results.db.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the results database and its schema.
func NewStore(resultsDir string) (*Store, error) {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	dbPath := filepath.Join(resultsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}

	s := &Store{db: db, dir: resultsDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS recipes (
		recipe_id TEXT PRIMARY KEY,
		title TEXT,
		servings INTEGER,
		energy REAL, protein REAL, carbs REAL, fat REAL,
		coverage REAL,
		verdict TEXT,
		reasons TEXT,
		parse_failures INTEGER,
		warnings TEXT,
		error TEXT,
		table_version TEXT,
		processed_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Completed returns the set of recipe IDs already processed. A resumed
// run skips these without reprocessing.
func (s *Store) Completed(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT recipe_id FROM recipes`)
	if err != nil {
		return nil, fmt.Errorf("querying completed recipes: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning recipe id: %w", err)
		}
		done[id] = true
	}
	return done, rows.Err()
}

// Put upserts one outcome. Re-running a recipe against a new index or
// table version replaces the derived profile; the ParsedIngredient
// records themselves are never mutated.
func (s *Store) Put(ctx context.Context, o Outcome) error {
	reasonsJSON, _ := json.Marshal(o.Result.Reasons)
	warningsJSON, _ := json.Marshal(o.Warnings)

	errText := ""
	if o.Err != nil {
		errText = o.Err.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (recipe_id, title, servings, energy, protein, carbs, fat,
			coverage, verdict, reasons, parse_failures, warnings, error,
			table_version, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(recipe_id) DO UPDATE SET
			title=excluded.title, servings=excluded.servings,
			energy=excluded.energy, protein=excluded.protein,
			carbs=excluded.carbs, fat=excluded.fat,
			coverage=excluded.coverage, verdict=excluded.verdict,
			reasons=excluded.reasons, parse_failures=excluded.parse_failures,
			warnings=excluded.warnings, error=excluded.error,
			table_version=excluded.table_version, processed_at=excluded.processed_at`,
		o.Recipe.ID, o.Recipe.Title, o.Profile.Servings,
		o.Profile.PerServing.Energy, o.Profile.PerServing.Protein,
		o.Profile.PerServing.Carbs, o.Profile.PerServing.Fat,
		o.Profile.CoverageRatio, string(o.Result.Verdict), string(reasonsJSON),
		o.ParseFailures, string(warningsJSON), errText,
		o.TableVersion, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing outcome for %s: %w", o.Recipe.ID, err)
	}
	return nil
}

// storedRow is one recipes-table row read back for export.
type storedRow struct {
	RecipeID      string
	Title         string
	Servings      int
	PerServing    types.NutrientVector
	Coverage      float64
	Verdict       types.Verdict
	Reasons       []types.ReasonCode
	ParseFailures int
	Warnings      []string
	Error         string
	TableVersion  string
}

// rowsOrdered reads all stored rows ordered by recipe ID so exports are
// byte-identical across identical runs.
func (s *Store) rowsOrdered(ctx context.Context) ([]storedRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_id, title, servings, energy, protein, carbs, fat,
			coverage, verdict, reasons, parse_failures, warnings, error, table_version
		 FROM recipes ORDER BY recipe_id`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []storedRow
	for rows.Next() {
		var (
			r            storedRow
			reasonsJSON  string
			warningsJSON string
		)
		if err := rows.Scan(&r.RecipeID, &r.Title, &r.Servings,
			&r.PerServing.Energy, &r.PerServing.Protein,
			&r.PerServing.Carbs, &r.PerServing.Fat,
			&r.Coverage, &r.Verdict, &reasonsJSON,
			&r.ParseFailures, &warningsJSON, &r.Error, &r.TableVersion); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		json.Unmarshal([]byte(reasonsJSON), &r.Reasons)
		json.Unmarshal([]byte(warningsJSON), &r.Warnings)
		out = append(out, r)
	}
	return out, rows.Err()
}
