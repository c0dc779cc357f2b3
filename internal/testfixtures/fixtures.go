package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

var (
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record that can be materialised
// for application or persistence tests.
type RoomFixture struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  fmt.Sprintf("Floor %d", idx%5+1),
		Capacity:  8,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated room capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// ToPersistence materialises the fixture as a persistence record.
func (f RoomFixture) ToPersistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ToApplication materialises the fixture as an application record.
func (f RoomFixture) ToApplication() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
	ID              string
	UserID          string
	RoomID          string
	Title           string
	Remarks         string
	Date            string
	StartTime       string
	EndTime         string
	RepeatType      recurrence.RepeatType
	IsRecurring     bool
	ParentBookingID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional
// overrides. Successive fixtures occupy successive non-overlapping hour slots
// on the same date so tests opt in to conflicts explicitly.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	hour := int(idx % 12)
	fixture := BookingFixture{
		ID:          fmt.Sprintf("booking-%03d", idx),
		UserID:      fmt.Sprintf("user-%03d", idx),
		RoomID:      fmt.Sprintf("room-%03d", idx),
		Title:       fmt.Sprintf("Booking %03d", idx),
		Date:        "2024-06-03",
		StartTime:   fmt.Sprintf("%02d:00", 8+hour),
		EndTime:     fmt.Sprintf("%02d:00", 9+hour),
		RepeatType:  recurrence.RepeatNone,
		IsRecurring: false,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingUser overrides the generated user ID.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingRoom overrides the generated room ID.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingDate overrides the generated civil date.
func WithBookingDate(date string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
	}
}

// WithBookingSlot overrides the generated start and end times.
func WithBookingSlot(start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingRepeat marks the fixture as a recurring seed of the given cadence.
func WithBookingRepeat(repeatType recurrence.RepeatType) BookingOption {
	return func(f *BookingFixture) {
		f.RepeatType = repeatType
	}
}

// WithBookingParent marks the fixture as a generated occurrence of the given
// seed booking.
func WithBookingParent(parentID string) BookingOption {
	return func(f *BookingFixture) {
		f.RepeatType = recurrence.RepeatNone
		f.IsRecurring = true
		f.ParentBookingID = &parentID
	}
}

// ToPersistence materialises the fixture as a persistence record.
func (f BookingFixture) ToPersistence() persistence.Booking {
	return persistence.Booking{
		ID:              f.ID,
		UserID:          f.UserID,
		RoomID:          f.RoomID,
		Title:           f.Title,
		Remarks:         f.Remarks,
		Date:            f.Date,
		StartTime:       f.StartTime,
		EndTime:         f.EndTime,
		RepeatType:      string(f.RepeatType),
		IsRecurring:     f.IsRecurring,
		ParentBookingID: f.ParentBookingID,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// ToApplication materialises the fixture as an application record.
func (f BookingFixture) ToApplication() application.Booking {
	return application.Booking{
		ID:              f.ID,
		UserID:          f.UserID,
		RoomID:          f.RoomID,
		Title:           f.Title,
		Remarks:         f.Remarks,
		Date:            f.Date,
		StartTime:       f.StartTime,
		EndTime:         f.EndTime,
		RepeatType:      f.RepeatType,
		IsRecurring:     f.IsRecurring,
		ParentBookingID: f.ParentBookingID,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}
