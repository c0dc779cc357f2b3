package testfixtures

import (
	"context"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
	"github.com/example/room-booking/internal/recurrence"
)

// MemoryBackend adapts the map-backed storage to the application-facing
// repository interfaces. Service tests wired through it run against real
// constraint behavior (unique names, foreign keys, cascade deletes) without
// touching a database file.
type MemoryBackend struct {
	Storage *memory.Storage
}

// NewMemoryBackend returns a backend over an empty storage.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{Storage: memory.New()}
}

// CreateBooking stores a booking.
func (b *MemoryBackend) CreateBooking(ctx context.Context, booking application.Booking) error {
	return b.Storage.CreateBooking(ctx, backendBookingRecord(booking))
}

// GetBooking retrieves a booking by id.
func (b *MemoryBackend) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	record, err := b.Storage.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return backendBookingModel(record), nil
}

// ListBookings enumerates bookings matching the filter.
func (b *MemoryBackend) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]application.Booking, error) {
	records, err := b.Storage.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	bookings := make([]application.Booking, len(records))
	for i, record := range records {
		bookings[i] = backendBookingModel(record)
	}
	return bookings, nil
}

// DeleteBooking removes a booking and its derived occurrences.
func (b *MemoryBackend) DeleteBooking(ctx context.Context, id string) error {
	return b.Storage.DeleteBooking(ctx, id)
}

// QueryOverlap returns bookings overlapping the given slot.
func (b *MemoryBackend) QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]application.Booking, error) {
	records, err := b.Storage.QueryOverlap(ctx, roomID, date, startTime, endTime, excludeID)
	if err != nil {
		return nil, err
	}
	bookings := make([]application.Booking, len(records))
	for i, record := range records {
		bookings[i] = backendBookingModel(record)
	}
	return bookings, nil
}

// InsertBookings stores the batch atomically.
func (b *MemoryBackend) InsertBookings(ctx context.Context, bookings []application.Booking) error {
	records := make([]persistence.Booking, len(bookings))
	for i, booking := range bookings {
		records[i] = backendBookingRecord(booking)
	}
	return b.Storage.InsertBookings(ctx, records)
}

// RoomExists reports whether the room id is known.
func (b *MemoryBackend) RoomExists(ctx context.Context, id string) (bool, error) {
	return b.Storage.RoomExists(ctx, id)
}

// CreateRoom stores a room.
func (b *MemoryBackend) CreateRoom(ctx context.Context, room application.Room) error {
	return b.Storage.CreateRoom(ctx, backendRoomRecord(room))
}

// UpdateRoom replaces a stored room.
func (b *MemoryBackend) UpdateRoom(ctx context.Context, room application.Room) error {
	return b.Storage.UpdateRoom(ctx, backendRoomRecord(room))
}

// GetRoom retrieves a room by id.
func (b *MemoryBackend) GetRoom(ctx context.Context, id string) (application.Room, error) {
	record, err := b.Storage.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return backendRoomModel(record), nil
}

// ListRooms enumerates all rooms.
func (b *MemoryBackend) ListRooms(ctx context.Context) ([]application.Room, error) {
	records, err := b.Storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, len(records))
	for i, record := range records {
		rooms[i] = backendRoomModel(record)
	}
	return rooms, nil
}

// DeleteRoom removes a room.
func (b *MemoryBackend) DeleteRoom(ctx context.Context, id string) error {
	return b.Storage.DeleteRoom(ctx, id)
}

func backendBookingRecord(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:              booking.ID,
		UserID:          booking.UserID,
		RoomID:          booking.RoomID,
		Title:           booking.Title,
		Remarks:         booking.Remarks,
		Date:            booking.Date,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		RepeatType:      string(booking.RepeatType),
		IsRecurring:     booking.IsRecurring,
		ParentBookingID: booking.ParentBookingID,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func backendBookingModel(record persistence.Booking) application.Booking {
	return application.Booking{
		ID:              record.ID,
		UserID:          record.UserID,
		RoomID:          record.RoomID,
		Title:           record.Title,
		Remarks:         record.Remarks,
		Date:            record.Date,
		StartTime:       record.StartTime,
		EndTime:         record.EndTime,
		RepeatType:      recurrence.RepeatType(record.RepeatType),
		IsRecurring:     record.IsRecurring,
		ParentBookingID: record.ParentBookingID,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func backendRoomRecord(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func backendRoomModel(record persistence.Room) application.Room {
	return application.Room{
		ID:        record.ID,
		Name:      record.Name,
		Location:  record.Location,
		Capacity:  record.Capacity,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
