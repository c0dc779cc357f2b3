package persistence

import "time"

// Booking represents a room reservation stored in persistence. Date is a
// civil date string ("2006-01-02") and the times are wall-clock "HH:MM"
// strings; neither carries a time zone.
type Booking struct {
	ID              string
	UserID          string
	RoomID          string
	Title           string
	Remarks         string
	Date            string
	StartTime       string
	EndTime         string
	RepeatType      string
	IsRecurring     bool
	ParentBookingID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
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
