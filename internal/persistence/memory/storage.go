// Package memory provides a map-backed implementation of the persistence
// repositories. It mirrors the SQLite layer's constraint behavior (unique
// names, foreign keys, cascade deletes) so services can be exercised without
// a database file.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/room-booking/internal/persistence"
)

// Storage implements the persistence repositories in process memory.
type Storage struct {
	mu       sync.RWMutex
	bookings map[string]persistence.Booking
	rooms    map[string]persistence.Room
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		bookings: make(map[string]persistence.Booking),
		rooms:    make(map[string]persistence.Room),
	}
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room, enforcing unique ids and names.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.rooms {
		if existing.Name == room.Name {
			return persistence.ErrDuplicate
		}
	}
	if room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom updates an existing room.
func (s *Storage) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	for id, existing := range s.rooms {
		if id != room.ID && existing.Name == room.Name {
			return persistence.ErrDuplicate
		}
	}
	if room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by id.
func (s *Storage) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms returns every room ordered by name.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// DeleteRoom removes a room unless bookings still reference it.
func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, booking := range s.bookings {
		if booking.RoomID == id {
			return persistence.ErrForeignKeyViolation
		}
	}
	delete(s.rooms, id)
	return nil
}

// RoomExists reports whether the room id is present in the catalog.
func (s *Storage) RoomExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.rooms[id]
	return ok, nil
}

// --- BookingRepository implementation ---

// CreateBooking stores a new booking after constraint checks.
func (s *Storage) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBookingLocked(booking)
}

// GetBooking retrieves a booking by id.
func (s *Storage) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

// ListBookings returns bookings matching the filter ordered by date, start
// time and id.
func (s *Storage) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0)
	for _, booking := range s.bookings {
		if filter.RoomID != "" && booking.RoomID != filter.RoomID {
			continue
		}
		if filter.UserID != "" && booking.UserID != filter.UserID {
			continue
		}
		if filter.DateFrom != "" && booking.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && booking.Date > filter.DateTo {
			continue
		}
		bookings = append(bookings, booking)
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		if bookings[i].StartTime != bookings[j].StartTime {
			return bookings[i].StartTime < bookings[j].StartTime
		}
		return bookings[i].ID < bookings[j].ID
	})
	return bookings, nil
}

// DeleteBooking removes a booking and cascades to occurrences referencing it.
func (s *Storage) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	for childID, child := range s.bookings {
		if child.ParentBookingID != nil && *child.ParentBookingID == id {
			delete(s.bookings, childID)
		}
	}
	return nil
}

// QueryOverlap returns bookings in the room on the date whose time range
// overlaps [startTime, endTime), excluding excludeID.
func (s *Storage) QueryOverlap(ctx context.Context, roomID, date, startTime, endTime, excludeID string) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]persistence.Booking, 0)
	for _, booking := range s.bookings {
		if booking.ID == excludeID {
			continue
		}
		if booking.RoomID != roomID || booking.Date != date {
			continue
		}
		if booking.StartTime < endTime && booking.EndTime > startTime {
			matches = append(matches, booking)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].StartTime != matches[j].StartTime {
			return matches[i].StartTime < matches[j].StartTime
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// InsertBookings writes the batch atomically; a constraint failure leaves
// the storage unchanged.
func (s *Storage) InsertBookings(ctx context.Context, bookings []persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		if err := s.insertBookingLocked(booking); err != nil {
			for _, id := range staged {
				delete(s.bookings, id)
			}
			return err
		}
		staged = append(staged, booking.ID)
	}
	return nil
}

func (s *Storage) insertBookingLocked(booking persistence.Booking) error {
	if booking.ID == "" || booking.StartTime >= booking.EndTime {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.bookings[booking.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.rooms[booking.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if booking.ParentBookingID != nil {
		if _, ok := s.bookings[*booking.ParentBookingID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
	}
	s.bookings[booking.ID] = booking
	return nil
}
