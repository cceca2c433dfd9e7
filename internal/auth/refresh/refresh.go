package refresh

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider"
	"github.com/adhocteam/va-mobile-sampleweb/internal/logger"
	"github.com/adhocteam/va-mobile-sampleweb/internal/session"
	"github.com/adhocteam/va-mobile-sampleweb/internal/token"
)

// Service exchanges refresh tokens for new access tokens and revokes
// tokens on logout. It reuses the provider flows and the token store
// independently of the interactive login path.
type Service struct {
	providers *provider.Registry
	tokens    token.Store
	sessions  session.Store
}

func New(providers *provider.Registry, tokens token.Store, sessions session.Store) *Service {
	return &Service{
		providers: providers,
		tokens:    tokens,
		sessions:  sessions,
	}
}

// Interactive refreshes the session user's tokens against the provider the
// session was last authenticated with, replaces the session token fields,
// and upserts the token store. The caller re-authenticates on ErrRefresh.
func (s *Service) Interactive(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.User == nil || sess.User.RefreshToken == "" {
		return fmt.Errorf("%w: session holds no refresh token", auth.ErrRefresh)
	}
	u := sess.User

	flow, err := s.providers.Get(u.Provider)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrRefresh, err)
	}

	ts, err := flow.Refresh(ctx, u.RefreshToken)
	if err != nil {
		return err
	}

	merged := u.Merge(nil, ts, u.Provider)
	sess.User = &merged

	if err := s.sessions.Update(ctx, *sess); err != nil {
		return fmt.Errorf("updating session after refresh: %w", err)
	}

	return s.tokens.Upsert(ctx, u.Provider, u.Email,
		merged.AccessToken, merged.RefreshToken)
}

// ServerToServer looks up the stored refresh token for an email and
// performs the provider refresh exchange. The store is consulted first: a
// missing record returns auth.ErrRecordNotFound without any provider
// contact. Only the new access token is returned; the refresh token stays
// server-side since this path exists for automated token pickup, not
// session replication.
func (s *Service) ServerToServer(ctx context.Context, providerKey, email string) (string, error) {
	flow, err := s.providers.Get(providerKey)
	if err != nil {
		return "", err
	}

	rec, err := s.tokens.Find(ctx, email)
	if err != nil {
		return "", err
	}

	refreshToken := rec.RefreshToken(providerKey)
	if refreshToken == "" {
		return "", auth.ErrRecordNotFound
	}

	ts, err := flow.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	// Providers may omit a rotated refresh token; keep the old one then.
	newRefresh := ts.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	if err := s.tokens.Upsert(ctx, providerKey, email, ts.AccessToken, newRefresh); err != nil {
		return "", err
	}

	return ts.AccessToken, nil
}

// Revoke best-effort revokes the session user's tokens at the provider and
// destroys the session. Local logout always succeeds: a failed remote
// revocation is logged as a warning, never surfaced to the user.
func (s *Service) Revoke(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}

	if u := sess.User; u != nil {
		flow, err := s.providers.Get(u.Provider)
		if err == nil {
			ts := &auth.TokenSet{
				AccessToken:  u.AccessToken,
				RefreshToken: u.RefreshToken,
				IDToken:      u.IDToken,
			}
			if err := flow.Revoke(ctx, ts); err != nil {
				logger.Warn("token revocation failed",
					zap.String("provider", u.Provider),
					zap.Error(err),
				)
			}
		}
	}

	if err := s.sessions.Delete(ctx, sess.SessionID); err != nil {
		logger.Warn("session delete failed", zap.Error(err))
	}
}
