package session

import (
	"time"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
)

// User is the session-scoped merge of identity claims and the current
// token set, plus the key of whichever provider authenticated last.
type User struct {
	Provider string `json:"provider"`
	Email    string `json:"email"`
	Subject  string `json:"subject,omitempty"`
	Name     string `json:"name,omitempty"`

	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`

	Claims map[string]any `json:"claims,omitempty"`
}

// Merge applies identity claims and token fields onto u, field by field,
// later write wins. Empty incoming fields leave the existing value alone,
// so a refresh that returns no refresh_token keeps the old one, and a
// session authenticated against one provider and then the other ends up
// with a hybrid user. Both are deliberate merge policy, not accidents.
// Merging the same exchange result twice yields identical fields.
func (u User) Merge(identity *auth.Identity, ts *auth.TokenSet, providerKey string) User {
	out := u

	if providerKey != "" {
		out.Provider = providerKey
	}

	if identity != nil {
		if identity.Email != "" {
			out.Email = identity.Email
		}
		if identity.Subject != "" {
			out.Subject = identity.Subject
		}
		if identity.Name != "" {
			out.Name = identity.Name
		}
		if len(identity.Claims) > 0 {
			merged := make(map[string]any, len(out.Claims)+len(identity.Claims))
			for k, v := range out.Claims {
				merged[k] = v
			}
			for k, v := range identity.Claims {
				merged[k] = v
			}
			out.Claims = merged
		}
	}

	if ts != nil {
		if ts.AccessToken != "" {
			out.AccessToken = ts.AccessToken
		}
		if ts.RefreshToken != "" {
			out.RefreshToken = ts.RefreshToken
		}
		if ts.IDToken != "" {
			out.IDToken = ts.IDToken
		}
		if !ts.Expiry.IsZero() {
			out.Expiry = ts.Expiry
		}
	}

	return out
}
