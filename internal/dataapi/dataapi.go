// Package dataapi is a thin client for the row-level-security data API
// that fronts the same database. The mutation handlers normally write
// through the privileged pool; delete-match uses this client as the
// secondary credential in its fallback strategy, retrying the delete as
// the caller so row-level policies decide instead of the service role.
package dataapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const dataAPITimeout = 10 * time.Second

// Client issues PostgREST-style requests authenticated as a caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a data API client. baseURL may be empty; Delete then fails
// with a configuration error, which callers treat as a failed attempt.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: dataAPITimeout,
		},
	}
}

// IsConfigured reports whether a data API endpoint is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// Delete removes rows matching idColumn = id from table, authenticated
// with the caller's own bearer token.
func (c *Client) Delete(ctx context.Context, table, idColumn, id, bearer string) error {
	if c.baseURL == "" {
		return fmt.Errorf("data API not configured")
	}

	u := fmt.Sprintf("%s/%s?%s=eq.%s", c.baseURL, table, idColumn, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("data API HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
