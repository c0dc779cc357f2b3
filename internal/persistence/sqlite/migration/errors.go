package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that a migration execution failed.
	ErrMigrationFailed = errors.New("migration execution failed")
	// ErrDuplicateVersion indicates that multiple migrations share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrChecksumMismatch indicates an applied migration's SQL changed after
	// it was recorded in the ledger.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

// Error wraps migration failures with the version and operation for context.
type Error struct {
	Version   int
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("migration %d: %s: %v", e.Version, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(version int, operation string, err error) *Error {
	return &Error{Version: version, Operation: operation, Err: err}
}
