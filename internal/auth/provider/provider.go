package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
)

// Timeout bounds every outbound call to a provider endpoint. A call that
// exceeds it fails the enclosing operation; the broker never retries.
const Timeout = 5 * time.Second

// PKCEMode selects how the code-verifier/challenge pair is produced for a
// provider: generated per authorization attempt, or a fixed pair from
// configuration.
type PKCEMode int

const (
	PKCEDisabled PKCEMode = iota
	PKCEEnabled
)

// Descriptor is the immutable per-provider client configuration, built once
// at startup and shared for the process lifetime.
type Descriptor struct {
	Key string // "iam" | "sis"

	AuthURL          string
	TokenURL         string
	IntrospectionURL string // sis only
	RevocationURL    string // iam only
	Issuer           string // iam only
	JWKSURL          string // iam only

	ClientID     string
	ClientSecret string
	RedirectURL  string

	PKCE PKCEMode

	// ExtraAuthParams are fixed query parameters appended to every
	// authorization URL for this provider.
	ExtraAuthParams map[string]string

	// CodeVerifier is the fixed PKCE verifier used when PKCE is disabled
	// (sis). The matching challenge lives in ExtraAuthParams.
	CodeVerifier string
}

// Flow is the capability set shared by the two provider variants. The set
// is closed: dispatch happens by provider key through the registry, and no
// further providers are in scope.
type Flow interface {
	Key() string
	Descriptor() *Descriptor

	// AuthCodeURL builds the provider authorization URL. The challenge is
	// ignored by flows with a fixed PKCE pair.
	AuthCodeURL(state, codeChallenge string) string

	// Exchange trades an authorization code for a TokenSet.
	Exchange(ctx context.Context, code, codeVerifier string) (*auth.TokenSet, error)

	// ResolveIdentity extracts the stable identity for a freshly exchanged
	// TokenSet, by id_token decode (iam) or introspection (sis). A session
	// is never bound without it.
	ResolveIdentity(ctx context.Context, ts *auth.TokenSet) (*auth.Identity, error)

	// Refresh trades a refresh token for a new TokenSet.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error)

	// Revoke invalidates the TokenSet at the provider, where the provider
	// exposes a revocation endpoint. Best-effort: callers log failures and
	// proceed with local logout.
	Revoke(ctx context.Context, ts *auth.TokenSet) error
}

// HTTPClient returns the client used for all outbound provider calls.
func HTTPClient() *http.Client {
	return &http.Client{Timeout: Timeout}
}

// MapTransportError folds timeouts and network-level failures into
// ErrProviderUnavailable. Protocol-level rejections pass through unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: %v", auth.ErrProviderUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", auth.ErrProviderUnavailable, err)
	}
	return err
}
