package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/persistence/memory"
	"github.com/example/club-scheduler/internal/persistence/sqlstore"
	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

// SQLiteHarness provides a migrated SQLite store on a temporary file for
// integration-style tests.
type SQLiteHarness struct {
	Store *sqlstore.Store
	Path  string

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "club.db")
	cfg := migration.TempFileTestConfig(path)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := migration.Run(ctx, cfg, logger); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	store, err := sqlstore.Open(cfg, sqlstore.Options{Logger: logger})
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store: store,
		Path:  path,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// StoreCase names a persistence.Store constructor for table-driven tests that
// must hold for every backend.
type StoreCase struct {
	Name string
	New  func(tb testing.TB) persistence.Store
}

// StoreCases returns the memory and SQLite backends.
func StoreCases() []StoreCase {
	return []StoreCase{
		{
			Name: "memory",
			New: func(tb testing.TB) persistence.Store {
				store := memory.New()
				tb.Cleanup(func() { _ = store.Close() })
				return store
			},
		},
		{
			Name: "sqlite",
			New: func(tb testing.TB) persistence.Store {
				return NewSQLiteHarness(tb).Store
			},
		},
	}
}
