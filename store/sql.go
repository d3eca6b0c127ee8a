// ABOUTME: SQL key-value backend shared by SQLite and Postgres
// ABOUTME: Stores each value as one row, replaced with an upsert
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type sqlBackend struct {
	db     *sql.DB
	getSQL string
	setSQL string
	delSQL string
}

// NewSQLiteBackend stores values in the kv table created by db.InitSchema.
func NewSQLiteBackend(database *sql.DB) Backend {
	return &sqlBackend{
		db:     database,
		getSQL: `SELECT value FROM kv WHERE key = ?`,
		setSQL: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delSQL: `DELETE FROM kv WHERE key = ?`,
	}
}

// NewPostgresBackend stores values in the closex_kv table created by
// db.InitPostgresSchema.
func NewPostgresBackend(database *sql.DB) Backend {
	return &sqlBackend{
		db:     database,
		getSQL: `SELECT value FROM closex_kv WHERE key = $1`,
		setSQL: `INSERT INTO closex_kv (key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		delSQL: `DELETE FROM closex_kv WHERE key = $1`,
	}
}

func (b *sqlBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, b.getSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (b *sqlBackend) Set(ctx context.Context, key string, value []byte) error {
	if _, err := b.db.ExecContext(ctx, b.setSQL, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *sqlBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, b.delSQL, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *sqlBackend) Close() error {
	return b.db.Close()
}
