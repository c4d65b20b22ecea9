package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vnykmshr/namecheck/internal/domain"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS name_results (
	name       TEXT PRIMARY KEY,
	fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	upsertSQL = `INSERT INTO name_results (name, fields, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE
SET fields = name_results.fields || EXCLUDED.fields,
    updated_at = EXCLUDED.updated_at`

	selectAllSQL = `SELECT name, fields FROM name_results ORDER BY name`
)

// PostgresStore keeps one row per name with the fields in a jsonb column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the name_results table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("creating name_results table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// MergeAndPersist upserts every record in one transaction. Stored fields the
// incoming record does not carry are kept.
func (s *PostgresStore) MergeAndPersist(ctx context.Context, records []domain.Record) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, r := range records {
		fields := r.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		payload, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encoding fields of %q: %w", r.Name, err)
		}
		if _, err := tx.Exec(ctx, upsertSQL, r.Name, string(payload)); err != nil {
			return fmt.Errorf("upserting %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}
	return nil
}

// Load returns every stored record ordered by name.
func (s *PostgresStore) Load(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var (
			name   string
			fields []byte
		)
		if err := rows.Scan(&name, &fields); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}

		r := domain.NewRecord(name)
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &r.Fields); err != nil {
				return nil, fmt.Errorf("decoding fields of %q: %w", name, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading result rows: %w", err)
	}
	return records, nil
}
