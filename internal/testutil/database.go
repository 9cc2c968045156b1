package testutil

import (
	"testing"

	"github.com/dukerupert/homedash/internal/database"
	"github.com/dukerupert/homedash/internal/store"
)

// NewStateStore opens an in-memory database and returns a state store and
// the kv store beneath it. The database is closed when the test ends.
func NewStateStore(t *testing.T) (*store.StateStore, *store.KVStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	kv := store.NewKVStore(db)
	return store.NewStateStore(kv), kv
}
