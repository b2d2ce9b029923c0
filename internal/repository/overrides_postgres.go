package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresOverridesRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOverridesRepository(ctx context.Context, databaseURL string) (*PostgresOverridesRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresOverridesRepository{pool: pool}, nil
}

func (r *PostgresOverridesRepository) Close() {
	r.pool.Close()
}

func (r *PostgresOverridesRepository) Migrate(ctx context.Context) error {
	return Migrate(ctx, r.pool)
}

func (r *PostgresOverridesRepository) Load(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM config_overrides`)
	if err != nil {
		return nil, fmt.Errorf("query config overrides: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config override: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config overrides: %w", err)
	}
	return filterOverrides(values), nil
}

func (r *PostgresOverridesRepository) Upsert(ctx context.Context, key, value string) error {
	if err := validateOverrideKey(key); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO config_overrides (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, normalizeKey(key), value)
	if err != nil {
		return fmt.Errorf("upsert config override %s: %w", key, err)
	}
	return nil
}
