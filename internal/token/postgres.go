package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/db"
)

// PostgresStore is the durable token store. Tokens are never deleted here:
// logout destroys the session only, so the stored refresh token keeps
// backing the server-to-server refresh endpoint.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func columnPrefix(provider string) (string, error) {
	switch provider {
	case "iam", "sis":
		return provider, nil
	}
	return "", fmt.Errorf("token: unknown provider %q", provider)
}

func (s *PostgresStore) Upsert(ctx context.Context, provider, email, accessToken, refreshToken string) error {
	prefix, err := columnPrefix(provider)
	if err != nil {
		return err
	}
	if email == "" {
		return errors.New("token: missing email")
	}

	// Single statement so concurrent upserts for the same email cannot
	// leave a partial row. The conflict branch touches only this
	// provider's column pair.
	query := fmt.Sprintf(`
		INSERT INTO tokens (email, %[1]s_access_token, %[1]s_refresh_token)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			%[1]s_access_token = EXCLUDED.%[1]s_access_token,
			%[1]s_refresh_token = EXCLUDED.%[1]s_refresh_token,
			updated_at = NOW()
	`, prefix)

	if _, err := s.db.ExecContext(ctx, query, email, nullable(accessToken), nullable(refreshToken)); err != nil {
		return fmt.Errorf("%w: upsert for %s: %v", auth.ErrPersistence, provider, err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, email string) (*Record, error) {
	var (
		rec Record
		iamAccess, iamRefresh,
		sisAccess, sisRefresh sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT email,
		       iam_access_token, iam_refresh_token,
		       sis_access_token, sis_refresh_token,
		       created_at, updated_at
		FROM tokens
		WHERE email = $1
	`, email).Scan(
		&rec.Email,
		&iamAccess, &iamRefresh,
		&sisAccess, &sisRefresh,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, auth.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find: %v", auth.ErrPersistence, err)
	}

	rec.IAMAccessToken = iamAccess.String
	rec.IAMRefreshToken = iamRefresh.String
	rec.SISAccessToken = sisAccess.String
	rec.SISRefreshToken = sisRefresh.String
	return &rec, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
