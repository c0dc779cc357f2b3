package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = "id, user_id, room_id, title, remarks, date, start_time, end_time, repeat_type, is_recurring, parent_booking_id, created_at, updated_at"

// CreateBooking inserts a single booking.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return insertBookingTx(tx, booking)
	})
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)

	booking, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, mapSQLiteError(err)
	}
	return booking, nil
}

// ListBookings returns bookings matching the filter, ordered by date and
// start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings"
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.RoomID != "" {
		clauses = append(clauses, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.DateFrom != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.DateTo)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date, start_time, id"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// DeleteBooking removes a booking; the schema cascades the delete to every
// occurrence whose parent_booking_id references it.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM bookings WHERE id = ?", id)
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
	})
}

// QueryOverlap returns bookings in the given room on the given date whose
// time range overlaps [startTime, endTime) under the open-interval test,
// excluding excludeID. Zero-padded HH:MM strings compare correctly as text.
func (r *BookingRepository) QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]persistence.Booking, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id = ? AND date = ? AND start_time < ? AND end_time > ? AND id != ? ORDER BY start_time, id",
		roomID, date, endTime, startTime, excludeID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// InsertBookings writes the batch inside one transaction; a failure rolls
// back every row.
func (r *BookingRepository) InsertBookings(ctx context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, booking := range bookings {
			if booking.ID == "" {
				return persistence.ErrConstraintViolation
			}
			if err := insertBookingTx(tx, booking); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertBookingTx(tx *sql.Tx, booking persistence.Booking) error {
	var parentID sql.NullString
	if booking.ParentBookingID != nil {
		parentID = sql.NullString{String: *booking.ParentBookingID, Valid: true}
	}

	_, err := tx.Exec(
		"INSERT INTO bookings ("+bookingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		booking.ID,
		booking.UserID,
		booking.RoomID,
		booking.Title,
		booking.Remarks,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.RepeatType,
		booking.IsRecurring,
		parentID,
		booking.CreatedAt.UTC().Format(time.RFC3339),
		booking.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapSQLiteError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var parentID sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.RoomID,
		&booking.Title,
		&booking.Remarks,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.RepeatType,
		&booking.IsRecurring,
		&parentID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Booking{}, err
	}

	if parentID.Valid {
		value := parentID.String
		booking.ParentBookingID = &value
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		booking.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		booking.UpdatedAt = ts
	}
	return booking, nil
}

func collectBookings(rows *sql.Rows) ([]persistence.Booking, error) {
	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, mapSQLiteError(err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return bookings, nil
}
