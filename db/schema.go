// ABOUTME: Database schema definitions
// ABOUTME: Key-value tables holding whole JSON snapshot documents
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS closex_kv (
	key TEXT PRIMARY KEY,
	value BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

func InitPostgresSchema(db *sql.DB) error {
	_, err := db.Exec(postgresSchema)
	return err
}
