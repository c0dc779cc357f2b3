package testfixtures

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite store
// for integration-style persistence tests. Store exposes the underlying
// connection for tests that exercise migrations or health checks directly.
type SQLiteHarness struct {
	Store    *sqlite.Store
	Bookings persistence.BookingRepository
	Rooms    persistence.RoomRepository

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
	dsn := "file:" + filepath.Join(dir, "roombooking.db")

	store, err := sqlite.Open(dsn, slog.Default())
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate store: %v", err)
	}

	harness := &SQLiteHarness{
		Store:    store,
		Bookings: store.Bookings,
		Rooms:    store.Rooms,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
