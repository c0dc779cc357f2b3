package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomColumns = "id, name, location, capacity, created_at, updated_at"

// CreateRoom inserts a new room catalog entry.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.DB().ExecContext(ctx,
		"INSERT INTO rooms ("+roomColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		room.ID,
		room.Name,
		room.Location,
		room.Capacity,
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapSQLiteError(err)
}

// UpdateRoom updates an existing room catalog entry.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.DB().ExecContext(ctx,
		"UPDATE rooms SET name = ?, location = ?, capacity = ?, updated_at = ? WHERE id = ?",
		room.Name,
		room.Location,
		room.Capacity,
		room.UpdatedAt.UTC().Format(time.RFC3339),
		room.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRoom retrieves a room by id.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)

	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, mapSQLiteError(err)
	}
	return room, nil
}

// ListRooms returns every room ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms ORDER BY name, id")
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapSQLiteError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return rooms, nil
}

// DeleteRoom removes a room. Rooms with bookings are protected by the
// foreign key and surface persistence.ErrForeignKeyViolation.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var createdAt, updatedAt string

	if err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Location,
		&room.Capacity,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Room{}, err
	}

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		room.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		room.UpdatedAt = ts
	}
	return room, nil
}
