package application

import (
	"time"

	"github.com/example/room-booking/internal/recurrence"
)

// Booking represents a room reservation exposed by the application services.
// Date is a civil date string ("2006-01-02"); StartTime and EndTime are
// zero-padded wall-clock "HH:MM" strings.
type Booking struct {
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

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	UserID     string
	RoomID     string
	Title      string
	Remarks    string
	Date       string
	StartTime  string
	EndTime    string
	RepeatType recurrence.RepeatType
	// EndDate bounds recurring expansion (inclusive). Nil means the expansion
	// runs until the iteration cap.
	EndDate *string
}

// CreateBookingResult reports the persisted seed booking together with the
// outcome of recurring expansion, when one was requested.
type CreateBookingResult struct {
	Booking   Booking
	Expansion *ExpandResult
}

// ListBookingsParams wraps the data required to list bookings.
type ListBookingsParams struct {
	RoomID   string
	UserID   string
	DateFrom string
	DateTo   string
}

// ConflictWarning describes an overlapping pair of bookings surfaced by
// listing queries.
type ConflictWarning struct {
	BookingID     string
	WithBookingID string
	RoomID        string
	Date          string
}

// ExpandParams wraps the data required to expand a seed booking into
// recurring occurrences. The seed itself is expected to be persisted already;
// expansion only emits additional occurrences.
type ExpandParams struct {
	Seed       Booking
	RepeatType recurrence.RepeatType
	EndDate    *string
	UserID     string
}

// ExpandResult reports the outcome of a recurring expansion run.
type ExpandResult struct {
	// Emitted holds the occurrences persisted by the run, in date order.
	Emitted []Booking
	// Count is len(Emitted); surfaced separately to match the wire contract.
	Count int
	// SkippedExcluded counts candidate dates vetoed by the holiday calendar.
	SkippedExcluded int
	// SkippedConflicts counts candidate dates vetoed by overlapping bookings.
	SkippedConflicts int
	// SkippedErrors counts candidate dates whose conflict query failed.
	SkippedErrors int
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Location string
	Capacity int
}

// Room represents a bookable room catalog entry.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
