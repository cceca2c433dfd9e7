package db

import (
	"context"
	"database/sql"
)

const tokensMigration = `
CREATE TABLE IF NOT EXISTS tokens (
    email text PRIMARY KEY,
    iam_access_token text,
    iam_refresh_token text,
    sis_access_token text,
    sis_refresh_token text,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

// RunTokensMigration creates the tokens table: one row per email, one
// access/refresh column pair per provider.
func RunTokensMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, tokensMigration)
	return err
}
