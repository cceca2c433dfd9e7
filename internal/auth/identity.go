package auth

import "time"

// TokenSet is the access/refresh/id-token bundle returned by a provider's
// token endpoint. It is owned exclusively by the identity it was issued
// for and is never shared across identities.
type TokenSet struct {
	AccessToken  string
	RefreshToken string    // may be absent; some refresh responses omit it
	IDToken      string    // signed JWT, iam only
	Expiry       time.Time // zero when the provider does not report one
}

// Identity is the normalized identity extracted from a token exchange.
// It is derived, never created on its own: every Identity is produced
// jointly with a TokenSet during an exchange. Email is the stable natural
// key used by the token store.
type Identity struct {
	Provider string // provider key ("iam" | "sis")
	Subject  string // provider-scoped subject identifier
	Email    string
	Name     string
	Claims   map[string]any // full claim set from the id_token payload or introspection body
}
