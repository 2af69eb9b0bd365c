package postgres

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it is not present yet. The cache layer keeps
// no persistent state, so this is the whole durable layout.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			timezone TEXT NOT NULL DEFAULT 'UTC'
		)`,
		`CREATE TABLE IF NOT EXISTS availability_windows (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day_of_week INT,
			specific_date DATE,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			CHECK ((day_of_week IS NULL) != (specific_date IS NULL)),
			CHECK (start_time < end_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_windows_owner ON availability_windows (owner_id)`,
		`CREATE TABLE IF NOT EXISTS commitments (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			invitee_name TEXT NOT NULL,
			invitee_email TEXT NOT NULL,
			date DATE NOT NULL,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			last_modified TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commitments_owner_date ON commitments (owner_id, date, status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
