package sis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider"
)

const Key = "sis"

// Flow implements the first-party sign-in service protocol: a non-standard
// authorization-code exchange with no client authentication, and an
// introspection call in place of a signed id_token.
//
// The PKCE pair is a single static, env-configured verifier/challenge
// shared across all users and sessions, so the verifier is not bound to the
// originating authorization request. That defeats PKCE's anti-interception
// purpose; it is kept because the upstream service expects exactly this
// exchange. Anyone migrating this flow should generate the pair per attempt
// once the upstream accepts it.
type Flow struct {
	desc   *provider.Descriptor
	client *http.Client
}

func New(desc *provider.Descriptor) *Flow {
	return &Flow{
		desc:   desc,
		client: provider.HTTPClient(),
	}
}

func (f *Flow) Key() string { return Key }

func (f *Flow) Descriptor() *provider.Descriptor { return f.desc }

// AuthCodeURL builds the sign-in URL. The fixed code_challenge and the
// service's application/oauth parameters come from the descriptor; the
// per-attempt challenge argument is ignored.
func (f *Flow) AuthCodeURL(state, _ string) string {
	q := url.Values{}
	q.Set("client_id", f.desc.ClientID)
	q.Set("redirect_uri", f.desc.RedirectURL)
	q.Set("response_type", "code")
	q.Set("state", state)
	for k, v := range f.desc.ExtraAuthParams {
		q.Set(k, v)
	}
	return f.desc.AuthURL + "?" + q.Encode()
}

// Exchange posts the code and the fixed verifier to the token endpoint.
// The service authenticates the client by its registered redirect target,
// not by credentials, so no client secret is sent.
func (f *Flow) Exchange(ctx context.Context, code, codeVerifier string) (*auth.TokenSet, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code_verifier": {codeVerifier},
		"code":          {code},
	}
	return f.tokenRequest(ctx, form, "sis token exchange")
}

// ResolveIdentity introspects the freshly issued access token and reads the
// email claim from the response body.
func (f *Flow) ResolveIdentity(ctx context.Context, ts *auth.TokenSet) (*auth.Identity, error) {
	if ts == nil || ts.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token to introspect", auth.ErrIntrospection)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.desc.IntrospectionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sis introspection: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ts.AccessToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, provider.MapTransportError(fmt.Errorf("sis introspection: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", auth.ErrIntrospection, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", auth.ErrIntrospection, err)
	}

	var payload struct {
		Data struct {
			ID         string         `json:"id"`
			Attributes map[string]any `json:"attributes"`
		} `json:"data"`
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", auth.ErrIntrospection, err)
	}

	claims := payload.Data.Attributes
	if claims == nil {
		claims = map[string]any{}
		if payload.Email != "" {
			claims["email"] = payload.Email
		}
		if payload.Sub != "" {
			claims["sub"] = payload.Sub
		}
	}

	email, _ := claims["email"].(string)
	if email == "" {
		email = payload.Email
	}
	if email == "" {
		return nil, fmt.Errorf("%w: response missing email", auth.ErrIntrospection)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		sub = payload.Data.ID
	}
	name, _ := claims["name"].(string)

	return &auth.Identity{
		Provider: Key,
		Subject:  sub,
		Email:    email,
		Name:     name,
		Claims:   claims,
	}, nil
}

func (f *Flow) Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	ts, err := f.tokenRequest(ctx, form, "sis refresh")
	if err != nil {
		var terr *tokenStatusError
		if errors.As(err, &terr) {
			return nil, fmt.Errorf("%w: sis returned status %d", auth.ErrRefresh, terr.status)
		}
		return nil, err
	}
	return ts, nil
}

// Revoke is a no-op: the sign-in service exposes no revocation endpoint.
// Logout still destroys the local session.
func (f *Flow) Revoke(ctx context.Context, ts *auth.TokenSet) error {
	return nil
}

type tokenStatusError struct {
	status int
}

func (e *tokenStatusError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.status)
}

func (f *Flow) tokenRequest(ctx context.Context, form url.Values, op string) (*auth.TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.desc.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, provider.MapTransportError(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: %w", op, &tokenStatusError{status: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", op, err)
	}

	// Token responses arrive either nested under data or flat.
	var payload struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", op, err)
	}

	access := payload.Data.AccessToken
	refresh := payload.Data.RefreshToken
	if access == "" {
		access = payload.AccessToken
		refresh = payload.RefreshToken
	}
	if access == "" {
		return nil, fmt.Errorf("%s: response missing access_token", op)
	}

	return &auth.TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
