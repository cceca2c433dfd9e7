package mobileapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthroughForwardsBearerToken(t *testing.T) {
	var path, authz string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		authz = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"id":"profile"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	body, err := c.UserProfile(context.Background(), "at-1")
	require.NoError(t, err)

	assert.Equal(t, "/mobile/v0/user", path)
	assert.Equal(t, "Bearer at-1", authz)
	assert.JSONEq(t, `{"data":{"id":"profile"}}`, string(body), "body is returned untouched")
}

func TestFolderMessagesPath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.FolderMessages(context.Background(), "inbox-0", "at-1")
	require.NoError(t, err)
	assert.Equal(t, "/mobile/v0/messaging/health/folders/inbox-0/messages", path)
}

func TestUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.MessagingFolders(context.Background(), "expired-at")
	assert.Error(t, err)
}
