package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

// Store bundles the SQLite-backed repositories behind a single handle.
type Store struct {
	pool     *ConnectionPool
	Bookings *BookingRepository
	Rooms    *RoomRepository
	logger   *slog.Logger
}

// Open connects to the SQLite database at the given DSN and wires the
// repositories. Migrate must be called before the repositories are used.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:     pool,
		Bookings: NewBookingRepository(pool),
		Rooms:    NewRoomRepository(pool),
		logger:   logger,
	}, nil
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewManager(s.pool.DB(), s.logger)
	return manager.Run(ctx, schemaMigrations)
}

// Ping tests the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.pool.Close()
}
