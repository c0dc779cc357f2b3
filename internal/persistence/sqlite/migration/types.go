package migration

import "time"

// Migration represents a schema migration compiled into the binary. Versions
// are applied in ascending numeric order exactly once.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// AppliedMigration represents a migration recorded in the version ledger.
type AppliedMigration struct {
	Version     int
	Description string
	Checksum    string
	AppliedAt   time.Time
}
