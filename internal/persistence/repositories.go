package persistence

import "context"

// BookingFilter narrows booking queries.
type BookingFilter struct {
	RoomID   string
	UserID   string
	DateFrom string
	DateTo   string
}

// BookingRepository stores room reservations.
//
// QueryOverlap and InsertBookings together form the store contract consumed
// by recurring-booking expansion: one read per candidate date followed by a
// single transactional bulk write.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	// DeleteBooking removes a booking together with the occurrences that
	// reference it through ParentBookingID.
	DeleteBooking(ctx context.Context, id string) error
	// QueryOverlap returns bookings in the given room on the given date whose
	// [start, end) range overlaps [startTime, endTime), excluding excludeID.
	QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]Booking, error)
	// InsertBookings writes the batch in a single transaction; either every
	// booking is persisted or none are.
	InsertBookings(ctx context.Context, bookings []Booking) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}
