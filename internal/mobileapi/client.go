package mobileapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is an opaque bearer-token passthrough to the downstream mobile
// API. It forwards the session's access token and returns the response
// body untouched; the broker never interprets it.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) UserProfile(ctx context.Context, accessToken string) ([]byte, error) {
	return c.get(ctx, "/mobile/v0/user", accessToken)
}

func (c *Client) MessagingFolders(ctx context.Context, accessToken string) ([]byte, error) {
	return c.get(ctx, "/mobile/v0/messaging/health/folders", accessToken)
}

func (c *Client) FolderMessages(ctx context.Context, folderID, accessToken string) ([]byte, error) {
	return c.get(ctx, "/mobile/v0/messaging/health/folders/"+folderID+"/messages", accessToken)
}

func (c *Client) get(ctx context.Context, path, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mobile api %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("mobile api %s: reading response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mobile api %s: status %d", path, resp.StatusCode)
	}
	return body, nil
}
