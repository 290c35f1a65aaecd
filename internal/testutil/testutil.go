// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/gkobilansky/sigcalc/internal/store"
)

// SetupTestStore creates a seeded test database that is closed when the
// test completes. Uses t.TempDir() for automatic cleanup.
func SetupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.Open(DBPath(t))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// DBPath returns a fresh database path inside the test's temp dir.
func DBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
