package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable marks timeouts and network failures talking to
	// a provider. Callers may retry the whole operation; the broker never
	// retries internally.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrMalformedToken marks an id_token that cannot be parsed as a
	// well-formed signed JSON token. The login attempt is aborted.
	ErrMalformedToken = errors.New("malformed id token")

	// ErrIntrospection marks a failed or incomplete introspection response.
	// The login attempt is aborted.
	ErrIntrospection = errors.New("token introspection failed")

	// ErrRefresh marks a rejected refresh exchange. The user must
	// re-authenticate.
	ErrRefresh = errors.New("token refresh rejected")

	// ErrRecordNotFound is a normal, expected outcome of a token store
	// lookup. It maps to "manual login required" on the server-to-server
	// endpoint, never to a hard failure.
	ErrRecordNotFound = errors.New("token record not found")

	// ErrPersistence marks an unreachable or failing token store.
	ErrPersistence = errors.New("token store unavailable")

	// ErrUnauthenticated signals a request with no bound session user.
	ErrUnauthenticated = errors.New("not authenticated")
)

// ConfigError reports a missing required configuration value. It is fatal
// at startup.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}
