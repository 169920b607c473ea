// Package migrations applies the database schema for the wallet fleet.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements are executed in order on every start. Each statement is
// idempotent so repeated application is safe.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS fleet_accounts (
		id         UUID PRIMARY KEY,
		seed       TEXT NOT NULL,
		secret     TEXT NOT NULL,
		address    TEXT NOT NULL UNIQUE,
		status     INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fleet_accounts_status ON fleet_accounts (status)`,
	`CREATE INDEX IF NOT EXISTS idx_fleet_accounts_created_at ON fleet_accounts (created_at)`,
}

// Apply executes all schema statements against the database.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
