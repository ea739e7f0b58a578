package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"asset-server/internal/db"
)

// OpenTestDB creates a throwaway sqlite database with migrations applied.
func OpenTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.sqlite3")
	conn, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}
