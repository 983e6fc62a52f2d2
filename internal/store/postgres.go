package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores every collection as one jsonb document in the
// collections table.
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPostgresBackend constructs a PostgresBackend. Call EnsureSchema before
// first use.
func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Name() string { return "postgres" }

// EnsureSchema creates the collections table if it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS collections (
			name       TEXT PRIMARY KEY,
			records    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	)
	if err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRow(ctx,
		`SELECT records::text FROM collections WHERE name = $1`,
		name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("select %s: %w", name, err)
	}
	return data, nil
}

func (b *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.db.Exec(ctx,
		`INSERT INTO collections (name, records, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (name) DO UPDATE
		 SET records = EXCLUDED.records, updated_at = EXCLUDED.updated_at`,
		name, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", name, err)
	}
	return nil
}
