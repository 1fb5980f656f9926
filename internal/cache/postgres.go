package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS screen_cache (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps cache entries in a single table so several
// processes share one warm cache. Expired rows are ignored on read and
// removed by Purge.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the table if needed
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create screen_cache table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM screen_cache WHERE key = $1 AND expires_at > now()`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set implements Store. ttl <= 0 stores for a year.
func (s *PostgresStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO screen_cache (key, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		key, data, time.Now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM screen_cache WHERE key = $1`, key)
	return err
}

// Purge drops expired rows and returns how many were removed
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM screen_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("cache purge failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
