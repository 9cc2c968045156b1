package store

import (
	"testing"

	"github.com/dukerupert/homedash/internal/database"
)

func setupKVTestDB(t *testing.T) *KVStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewKVStore(db)
}

func TestKVGetMissing(t *testing.T) {
	kv := setupKVTestDB(t)

	v, ok, err := kv.Get("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Errorf("ok = true for missing key, value %q", v)
	}
}

func TestKVSetOverwrite(t *testing.T) {
	kv := setupKVTestDB(t)

	if err := kv.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("theme", "light"); err != nil {
		t.Fatalf("set again: %v", err)
	}

	v, ok, err := kv.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != "light" {
		t.Errorf("get = (%q, %v), want (%q, true)", v, ok, "light")
	}
}

func TestKVDelete(t *testing.T) {
	kv := setupKVTestDB(t)

	if err := kv.Set("a", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("a"); ok {
		t.Error("expected key to be gone after delete")
	}
	// Deleting a missing key is not an error
	if err := kv.Delete("a"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestKVKeys(t *testing.T) {
	kv := setupKVTestDB(t)

	for _, k := range []string{"b", "a", "c"} {
		if err := kv.Set(k, "x"); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := kv.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
