// ABOUTME: Tests for opening the SQLite snapshot database
// ABOUTME: Covers directory creation, WAL mode, reopen persistence and bad paths
package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDatabaseCreatesNestedFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "closex", "closex.db")

	database, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer func() { _ = database.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	var mode string
	if err := database.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	if stats := database.Stats(); stats.MaxOpenConnections != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", stats.MaxOpenConnections)
	}
}

func TestOpenDatabaseKeepsSnapshotAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "closex.db")

	first, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	if _, err := first.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)`, "close_data", []byte(`{"lastSync":1}`)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = first.Close()

	second, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = second.Close() }()

	var value []byte
	if err := second.QueryRow(`SELECT value FROM kv WHERE key = ?`, "close_data").Scan(&value); err != nil {
		t.Fatalf("select after reopen: %v", err)
	}
	if string(value) != `{"lastSync":1}` {
		t.Errorf("value = %s", value)
	}
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	// A regular file where a directory is expected fails for every user
	blocker := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	if _, err := OpenDatabase(filepath.Join(blocker, "x.db")); err == nil {
		t.Error("expected an error for a path beneath a regular file")
	}
}
