package sqlite

import "github.com/example/room-booking/internal/persistence/sqlite/migration"

// schemaMigrations is the ordered schema history for the booking database.
// Append-only; released versions are never edited.
var schemaMigrations = []migration.Migration{
	{
		Version:     1,
		Description: "create rooms table",
		SQL: `
CREATE TABLE rooms (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	location TEXT NOT NULL,
	capacity INTEGER NOT NULL CHECK (capacity > 0),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`,
	},
	{
		Version:     2,
		Description: "create bookings table",
		SQL: `
CREATE TABLE bookings (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	room_id TEXT NOT NULL REFERENCES rooms (id),
	title TEXT NOT NULL,
	remarks TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	repeat_type TEXT NOT NULL DEFAULT 'no_repeat',
	is_recurring INTEGER NOT NULL DEFAULT 0,
	parent_booking_id TEXT REFERENCES bookings (id) ON DELETE CASCADE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	CHECK (start_time < end_time)
);
CREATE INDEX idx_bookings_room_date ON bookings (room_id, date);
CREATE INDEX idx_bookings_parent ON bookings (parent_booking_id);
CREATE INDEX idx_bookings_user ON bookings (user_id);`,
	},
}
