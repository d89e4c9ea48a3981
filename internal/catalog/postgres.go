package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const formulaColumns = `formula_id, formula_brand, category, lactose_level, target_issue, protein_type`

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS formulas (
			formula_id    INTEGER PRIMARY KEY,
			formula_brand TEXT NOT NULL,
			category      TEXT NOT NULL,
			lactose_level TEXT NOT NULL,
			target_issue  TEXT NOT NULL,
			protein_type  TEXT NOT NULL
		)`)
	return err
}

func (s *PostgresStore) LoadFormulas(ctx context.Context) ([]FormulaProduct, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+formulaColumns+` FROM formulas ORDER BY formula_id`)
	if err != nil {
		return nil, fmt.Errorf("query formulas: %w", err)
	}
	defer rows.Close()

	var out []FormulaProduct
	for rows.Next() {
		var f FormulaProduct
		if err := rows.Scan(&f.FormulaID, &f.Brand, &f.Category, &f.LactoseLevel, &f.TargetIssue, &f.ProteinType); err != nil {
			return nil, fmt.Errorf("scan formula: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpsertFormulas writes the given products in one transaction, replacing
// existing rows with the same formula_id.
func (s *PostgresStore) UpsertFormulas(ctx context.Context, formulas []FormulaProduct) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, f := range formulas {
		batch.Queue(`
			INSERT INTO formulas (`+formulaColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (formula_id) DO UPDATE SET
				formula_brand = EXCLUDED.formula_brand,
				category      = EXCLUDED.category,
				lactose_level = EXCLUDED.lactose_level,
				target_issue  = EXCLUDED.target_issue,
				protein_type  = EXCLUDED.protein_type`,
			f.FormulaID, f.Brand, f.Category, f.LactoseLevel, f.TargetIssue, f.ProteinType,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert formulas: %w", err)
	}
	return tx.Commit(ctx)
}
