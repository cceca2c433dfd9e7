package token

import (
	"context"
	"time"
)

// Record is the durable, email-keyed row of per-provider tokens. A single
// identity may hold independent iam and sis credentials at the same time;
// each provider owns its own column pair. Empty string means the column is
// null.
type Record struct {
	Email string

	IAMAccessToken  string
	IAMRefreshToken string
	SISAccessToken  string
	SISRefreshToken string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshToken returns the stored refresh token for a provider key, or ""
// when none is held.
func (r *Record) RefreshToken(provider string) string {
	switch provider {
	case "iam":
		return r.IAMRefreshToken
	case "sis":
		return r.SISRefreshToken
	}
	return ""
}

// Store persists per-identity, per-provider token pairs. Upserts for
// distinct emails are safe to run concurrently; for the same email,
// last-writer-wins.
type Store interface {
	// Upsert writes one provider's token pair for an email, creating the
	// row if needed and touching only that provider's columns plus
	// updated_at otherwise. Idempotent per (email, provider).
	Upsert(ctx context.Context, provider, email, accessToken, refreshToken string) error

	// Find returns the record for an email. A missing record is reported
	// as auth.ErrRecordNotFound, a normal outcome meaning "manual login
	// required".
	Find(ctx context.Context, email string) (*Record, error)
}
