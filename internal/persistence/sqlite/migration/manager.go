package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

const versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// Manager applies compiled-in migrations against a SQLite database.
//
// Each pending migration runs inside its own transaction together with its
// ledger record, so a failure leaves the database at the last fully applied
// version. Re-running is idempotent; already applied versions are verified
// by checksum and skipped.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewManager constructs a Manager for the given database handle.
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, logger: logger}
}

// Run applies every pending migration in ascending version order.
func (m *Manager) Run(ctx context.Context, migrations []Migration) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("migration manager not configured")
	}

	if err := validateVersions(migrations); err != nil {
		return err
	}

	if _, err := m.db.ExecContext(ctx, versionTableDDL); err != nil {
		return fmt.Errorf("initialize version table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	pending := 0
	for _, mig := range ordered {
		checksum := checksumOf(mig.SQL)

		if record, ok := applied[mig.Version]; ok {
			if record.Checksum != checksum {
				return newError(mig.Version, "verify", ErrChecksumMismatch)
			}
			continue
		}

		m.logger.InfoContext(ctx, "applying migration", "version", mig.Version, "description", mig.Description)
		if err := m.apply(ctx, mig, checksum); err != nil {
			return err
		}
		pending++
	}

	if pending > 0 {
		m.logger.InfoContext(ctx, "migrations applied", "count", pending)
	}
	return nil
}

// Applied returns the recorded migration ledger in version order.
func (m *Manager) Applied(ctx context.Context) ([]AppliedMigration, error) {
	records, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AppliedMigration, 0, len(records))
	for _, record := range records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (m *Manager) apply(ctx context.Context, mig Migration, checksum string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(mig.Version, "begin", err)
	}

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		_ = tx.Rollback()
		return newError(mig.Version, "execute", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
	}

	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description, checksum, applied_at) VALUES (?, ?, ?, ?)",
		mig.Version, mig.Description, checksum, appliedAt,
	); err != nil {
		_ = tx.Rollback()
		return newError(mig.Version, "record", err)
	}

	if err := tx.Commit(); err != nil {
		return newError(mig.Version, "commit", err)
	}
	return nil
}

func (m *Manager) appliedVersions(ctx context.Context) (map[int]AppliedMigration, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version, description, checksum, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read version table: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]AppliedMigration)
	for rows.Next() {
		var record AppliedMigration
		var appliedAt string
		if err := rows.Scan(&record.Version, &record.Description, &record.Checksum, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan version row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, appliedAt); err == nil {
			record.AppliedAt = ts
		}
		applied[record.Version] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version rows: %w", err)
	}
	return applied, nil
}

func validateVersions(migrations []Migration) error {
	seen := make(map[int]struct{}, len(migrations))
	for _, mig := range migrations {
		if _, ok := seen[mig.Version]; ok {
			return newError(mig.Version, "validate", ErrDuplicateVersion)
		}
		seen[mig.Version] = struct{}{}
	}
	return nil
}

func checksumOf(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}
