package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nhle/bugzilla-recovery/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.Bootstrap(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewFileStore bootstraps a database file in a temporary directory, closes
// it, and returns its path for tests that exercise store.Open.
func NewFileStore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.db")
	s, err := store.Bootstrap(path)
	if err != nil {
		t.Fatalf("bootstrapping %s: %v", path, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}
	return path
}
