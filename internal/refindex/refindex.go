// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refindex builds and queries the blocked reference nutrient
// index. The build is a one-time single-writer phase; the resulting
// SQLite database is read-only for the rest of the pipeline, so queries
// need no locking. Blocking keys bound the candidate set per query, which
// keeps approximate lookup tractable over millions of products.
package refindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nutrigen/internal/dataset"
	"github.com/pdiddy/nutrigen/internal/parse"
	"github.com/pdiddy/nutrigen/pkg/types"
)

const (
	dbFile = "reference.db"

	// blockPrefixLen is the number of leading characters of each name
	// token used as a blocking key.
	blockPrefixLen = 4

	defaultCandidateCap = 200
)

// Index is a handle on the reference database.
type Index struct {
	db           *sql.DB
	candidateCap int
}

// Open opens or creates the reference database under cfg.IndexDir and
// ensures the schema exists.
func Open(cfg types.IndexConfig) (*Index, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening reference database: %w", err)
	}

	limit := cfg.CandidateCap
	if limit <= 0 {
		limit = defaultCandidateCap
	}

	idx := &Index{db: db, candidateCap: limit}
	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return idx, nil
}

// Close releases the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			energy REAL,
			protein REAL,
			carbs REAL,
			fat REAL,
			complete INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			key TEXT NOT NULL,
			product_id TEXT NOT NULL REFERENCES products(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_key ON blocks(key)`,
	}
	for _, stmt := range statements {
		if _, err := idx.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BuildSummary holds counts from an index build run.
type BuildSummary struct {
	Indexed int
	Skipped int
}

// Total returns the number of source rows processed.
func (s BuildSummary) Total() int {
	return s.Indexed + s.Skipped
}

// Build streams the reference database rows through the parser's name
// normalization and populates the products and blocks tables. Any
// previous index contents are replaced. Rows with a blank name or no
// parseable nutrient field are skipped and counted.
func (idx *Index) Build(ctx context.Context, r *dataset.ReferenceReader, parser *parse.Parser, tableVersion string, w io.Writer) (BuildSummary, error) {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM blocks`, `DELETE FROM products`, `DELETE FROM meta`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return BuildSummary{}, fmt.Errorf("clearing previous index: %w", err)
		}
	}

	insertProduct, err := tx.PrepareContext(ctx,
		`INSERT INTO products (id, name, energy, protein, carbs, fat, complete)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("preparing product insert: %w", err)
	}
	defer insertProduct.Close()

	insertBlock, err := tx.PrepareContext(ctx,
		`INSERT INTO blocks (key, product_id) VALUES (?, ?)`)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("preparing block insert: %w", err)
	}
	defer insertBlock.Close()

	var summary BuildSummary
	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("reading reference row: %w", err)
		}

		name := parser.NormalizeName(row.ProductName)
		if name == "" || row.Present == 0 {
			summary.Skipped++
			continue
		}

		id := fmt.Sprintf("p%07d", summary.Indexed)
		if _, err := insertProduct.ExecContext(ctx,
			id, name,
			row.Per100g.Energy, row.Per100g.Protein, row.Per100g.Carbs, row.Per100g.Fat,
			boolInt(row.Present == 4),
		); err != nil {
			return summary, fmt.Errorf("inserting product %s: %w", id, err)
		}

		for _, key := range BlockingKeys(name) {
			if _, err := insertBlock.ExecContext(ctx, key, id); err != nil {
				return summary, fmt.Errorf("inserting block key for %s: %w", id, err)
			}
		}

		summary.Indexed++
		if summary.Indexed%100000 == 0 {
			fmt.Fprintf(w, "indexed %d products\n", summary.Indexed)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('table_version', ?)`, tableVersion); err != nil {
		return summary, fmt.Errorf("recording table version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing index: %w", err)
	}

	fmt.Fprintf(w, "\nindexed: %d, skipped: %d\n", summary.Indexed, summary.Skipped)
	return summary, nil
}

// TableVersion returns the table-set version the index was built with.
func (idx *Index) TableVersion(ctx context.Context) (string, error) {
	var v string
	err := idx.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'table_version'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("index has no table version: run the index build first")
	}
	if err != nil {
		return "", fmt.Errorf("reading table version: %w", err)
	}
	return v, nil
}

// Candidates returns the products sharing at least one blocking key with
// the normalized name, capped at the configured candidate limit and
// ordered by product ID for determinism. An empty result means the name
// will be reported unmatched.
func (idx *Index) Candidates(ctx context.Context, normalizedName string) ([]types.ReferenceProduct, error) {
	keys := BlockingKeys(normalizedName)
	if len(keys) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, idx.candidateCap)

	rows, err := idx.db.QueryContext(ctx,
		`SELECT DISTINCT p.id, p.name, p.energy, p.protein, p.carbs, p.fat, p.complete
		 FROM blocks b JOIN products p ON p.id = b.product_id
		 WHERE b.key IN (`+placeholders+`)
		 ORDER BY p.id LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []types.ReferenceProduct
	for rows.Next() {
		var (
			p        types.ReferenceProduct
			complete int
		)
		if err := rows.Scan(&p.ID, &p.NormalizedName,
			&p.Per100g.Energy, &p.Per100g.Protein, &p.Per100g.Carbs, &p.Per100g.Fat,
			&complete); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		p.Complete = complete != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// BlockingKeys derives the coarse index keys for a normalized name: the
// first blockPrefixLen characters of each token at least two characters
// long, deduplicated.
func BlockingKeys(name string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(name) {
		if len(tok) < 2 {
			continue
		}
		key := tok
		if len(key) > blockPrefixLen {
			key = key[:blockPrefixLen]
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
