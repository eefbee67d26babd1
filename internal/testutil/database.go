package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/marketclient/internal/client/repositories"
	"github.com/dmitrijs2005/marketclient/internal/client/repositories/kv"
)

// NewKV returns a migrated SQLite-backed store in a per-test temp dir.
func NewKV(t *testing.T) *kv.SQLiteRepository {
	t.Helper()
	db, err := repositories.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return kv.NewSQLiteRepository(db)
}
