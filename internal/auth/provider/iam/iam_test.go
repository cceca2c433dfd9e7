package iam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/auth/provider"
)

func testDescriptor(tokenURL, revocationURL string) *provider.Descriptor {
	return &provider.Descriptor{
		Key:           Key,
		AuthURL:       "https://iam.example.gov/oauth/authorize",
		TokenURL:      tokenURL,
		RevocationURL: revocationURL,
		ClientID:      "mobile-client",
		ClientSecret:  "secret",
		RedirectURL:   "https://broker.example.gov/auth/iam/login-success",
		PKCE:          provider.PKCEEnabled,
		ExtraAuthParams: map[string]string{
			"response_mode": "query",
		},
	}
}

func newTestFlow(t *testing.T, tokenURL, revocationURL string) *Flow {
	t.Helper()
	f, err := New(context.Background(), testDescriptor(tokenURL, revocationURL), false)
	require.NoError(t, err)
	return f
}

// signedToken builds a syntactically valid JWT. The signature does not
// matter: the resolver decodes without verifying.
func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestAuthCodeURL(t *testing.T) {
	f := newTestFlow(t, "https://iam.example.gov/oauth/token", "")

	raw := f.AuthCodeURL("state-123", "challenge-abc")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "iam.example.gov", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "mobile-client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "query", q.Get("response_mode"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "challenge-abc", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "https://broker.example.gov/auth/iam/login-success", q.Get("redirect_uri"))
}

func TestExchangeSendsClientCredentialsInBody(t *testing.T) {
	idToken := signedToken(t, jwt.MapClaims{"sub": "s", "email": "user@example.com"})

	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","id_token":"` + idToken + `"}`))
	}))
	defer srv.Close()

	f := newTestFlow(t, srv.URL, "")

	ts, err := f.Exchange(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "at-1", ts.AccessToken)
	assert.Equal(t, "rt-1", ts.RefreshToken)
	assert.Equal(t, idToken, ts.IDToken)

	// The provider requires client credentials in the body even with PKCE.
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "code-1", form.Get("code"))
	assert.Equal(t, "verifier-1", form.Get("code_verifier"))
	assert.Equal(t, "mobile-client", form.Get("client_id"))
	assert.Equal(t, "secret", form.Get("client_secret"))
}

func TestExchangeUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	f := newTestFlow(t, srv.URL, "")

	_, err := f.Exchange(context.Background(), "code-1", "verifier-1")
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)
}

func TestResolveIdentity(t *testing.T) {
	f := newTestFlow(t, "https://iam.example.gov/oauth/token", "")

	raw := signedToken(t, jwt.MapClaims{
		"sub":   "sub-1",
		"email": "user@example.com",
		"name":  "Test User",
		"icn":   "12345",
	})

	identity, err := f.ResolveIdentity(context.Background(), &auth.TokenSet{
		AccessToken: "at-1",
		IDToken:     raw,
	})
	require.NoError(t, err)

	assert.Equal(t, Key, identity.Provider)
	assert.Equal(t, "sub-1", identity.Subject)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.Equal(t, "Test User", identity.Name)
	assert.Equal(t, "12345", identity.Claims["icn"])
}

func TestResolveIdentityMalformedToken(t *testing.T) {
	f := newTestFlow(t, "https://iam.example.gov/oauth/token", "")

	cases := map[string]*auth.TokenSet{
		"no id_token":   {AccessToken: "at"},
		"garbage":       {AccessToken: "at", IDToken: "not-a-jwt"},
		"two segments":  {AccessToken: "at", IDToken: "aGVhZGVy.cGF5bG9hZA"},
		"nil token set": nil,
	}
	for name, ts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ResolveIdentity(context.Background(), ts)
			assert.ErrorIs(t, err, auth.ErrMalformedToken)
		})
	}
}

func TestResolveIdentityMissingEmail(t *testing.T) {
	f := newTestFlow(t, "https://iam.example.gov/oauth/token", "")

	raw := signedToken(t, jwt.MapClaims{"sub": "sub-1"})
	_, err := f.ResolveIdentity(context.Background(), &auth.TokenSet{IDToken: raw})
	assert.ErrorIs(t, err, auth.ErrMalformedToken)
}

func TestRefresh(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-at","refresh_token":"new-rt","expires_in":600}`))
	}))
	defer srv.Close()

	f := newTestFlow(t, srv.URL, "")

	ts, err := f.Refresh(context.Background(), "old-rt")
	require.NoError(t, err)

	assert.Equal(t, "new-at", ts.AccessToken)
	assert.Equal(t, "new-rt", ts.RefreshToken)
	assert.False(t, ts.Expiry.IsZero())

	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "old-rt", form.Get("refresh_token"))
	assert.Equal(t, "mobile-client", form.Get("client_id"))
	assert.Equal(t, "secret", form.Get("client_secret"))
	assert.Equal(t, "https://broker.example.gov/auth/iam/login-success", form.Get("redirect_uri"))
}

func TestRefreshRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	f := newTestFlow(t, srv.URL, "")

	_, err := f.Refresh(context.Background(), "stale-rt")
	assert.ErrorIs(t, err, auth.ErrRefresh)
}

func TestRevoke(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFlow(t, "https://iam.example.gov/oauth/token", srv.URL)

	err := f.Revoke(context.Background(), &auth.TokenSet{AccessToken: "at-1"})
	require.NoError(t, err)
	assert.Equal(t, "at-1", form.Get("token"))
}

func TestRevokeWithoutEndpointIsNoop(t *testing.T) {
	f := newTestFlow(t, "https://iam.example.gov/oauth/token", "")
	assert.NoError(t, f.Revoke(context.Background(), &auth.TokenSet{AccessToken: "at-1"}))
}
