package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := Session{
		SessionID: "sid-1",
		User:      &User{Email: "user@example.com"},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user@example.com", got.User.Email)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	got, err = store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Delete is idempotent.
	require.NoError(t, store.Delete(ctx, "sid-1"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, Session{
		SessionID: "sid-2",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	got, err := store.Get(ctx, "sid-2")
	require.NoError(t, err)
	assert.Nil(t, got, "expired sessions are not returned")
}
