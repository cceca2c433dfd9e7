package provider

import (
	"context"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
)

type stubFlow struct {
	key  string
	desc *Descriptor
}

func (s *stubFlow) Key() string             { return s.key }
func (s *stubFlow) Descriptor() *Descriptor { return s.desc }

func (s *stubFlow) AuthCodeURL(state, codeChallenge string) string { return "" }

func (s *stubFlow) Exchange(ctx context.Context, code, codeVerifier string) (*auth.TokenSet, error) {
	return nil, nil
}

func (s *stubFlow) ResolveIdentity(ctx context.Context, ts *auth.TokenSet) (*auth.Identity, error) {
	return nil, nil
}

func (s *stubFlow) Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error) {
	return nil, nil
}

func (s *stubFlow) Revoke(ctx context.Context, ts *auth.TokenSet) error { return nil }
