package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
)

func TestMergeBindsIdentityAndTokens(t *testing.T) {
	identity := &auth.Identity{
		Provider: "iam",
		Subject:  "sub-1",
		Email:    "user@example.com",
		Name:     "Test User",
		Claims:   map[string]any{"email": "user@example.com", "icn": "12345"},
	}
	ts := &auth.TokenSet{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		IDToken:      "idt-1",
		Expiry:       time.Now().Add(time.Hour),
	}

	u := User{}.Merge(identity, ts, "iam")

	assert.Equal(t, "iam", u.Provider)
	assert.Equal(t, "user@example.com", u.Email)
	assert.Equal(t, "sub-1", u.Subject)
	assert.Equal(t, "at-1", u.AccessToken)
	assert.Equal(t, "rt-1", u.RefreshToken)
	assert.Equal(t, "idt-1", u.IDToken)
	assert.Equal(t, "12345", u.Claims["icn"])
}

func TestMergeIsIdempotent(t *testing.T) {
	identity := &auth.Identity{
		Provider: "iam",
		Email:    "user@example.com",
		Claims:   map[string]any{"icn": "12345"},
	}
	ts := &auth.TokenSet{AccessToken: "at-1", RefreshToken: "rt-1"}

	once := User{}.Merge(identity, ts, "iam")
	twice := once.Merge(identity, ts, "iam")

	assert.Equal(t, once, twice)
}

func TestMergeLaterWriteWins(t *testing.T) {
	iamIdentity := &auth.Identity{
		Provider: "iam",
		Email:    "user@example.com",
		Name:     "IAM Name",
		Claims:   map[string]any{"icn": "12345", "source": "iam"},
	}
	iamTokens := &auth.TokenSet{AccessToken: "iam-at", RefreshToken: "iam-rt", IDToken: "iam-idt"}

	sisIdentity := &auth.Identity{
		Provider: "sis",
		Email:    "user@example.com",
		Claims:   map[string]any{"source": "sis"},
	}
	sisTokens := &auth.TokenSet{AccessToken: "sis-at", RefreshToken: "sis-rt"}

	u := User{}.Merge(iamIdentity, iamTokens, "iam")
	u = u.Merge(sisIdentity, sisTokens, "sis")

	// Later login overwrites shared fields, leaves the rest. The hybrid
	// result is the documented merge policy.
	assert.Equal(t, "sis", u.Provider)
	assert.Equal(t, "sis-at", u.AccessToken)
	assert.Equal(t, "sis-rt", u.RefreshToken)
	assert.Equal(t, "sis", u.Claims["source"])
	assert.Equal(t, "IAM Name", u.Name, "fields absent from the later login survive")
	assert.Equal(t, "iam-idt", u.IDToken)
	assert.Equal(t, "12345", u.Claims["icn"])
}

func TestMergeRefreshKeepsOldRefreshToken(t *testing.T) {
	u := User{Provider: "iam", Email: "user@example.com", AccessToken: "old-at", RefreshToken: "old-rt"}

	// A refresh response with no rotated refresh token.
	u = u.Merge(nil, &auth.TokenSet{AccessToken: "new-at"}, "iam")

	assert.Equal(t, "new-at", u.AccessToken)
	assert.Equal(t, "old-rt", u.RefreshToken)
}

func TestMergeDoesNotMutateReceiver(t *testing.T) {
	orig := User{Claims: map[string]any{"a": 1}}
	_ = orig.Merge(&auth.Identity{Claims: map[string]any{"a": 2}}, nil, "iam")

	assert.Equal(t, 1, orig.Claims["a"])
}
