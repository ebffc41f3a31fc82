// Package identity is the client for the hosted identity provider. It
// exchanges bearer tokens for verified users and exposes the two admin
// operations the API needs: email confirmation and identity deletion.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const identityTimeout = 10 * time.Second

// User is the verified identity returned by the provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Error carries the provider's HTTP status alongside its message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity provider HTTP %d: %s", e.Status, e.Message)
}

// Client talks to the identity provider's REST surface. The service key
// authorizes admin endpoints; user verification uses the caller's own
// token.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// New creates an identity client. serviceKey may be empty, in which case
// admin operations fail with a configuration error.
func New(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: identityTimeout,
		},
	}
}

// UserFromToken exchanges a bearer token for the authenticated user.
// One round trip, no retries, no caching.
func (c *Client) UserFromToken(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, providerError(resp)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return User{}, fmt.Errorf("identity decode error: %w", err)
	}
	if u.ID == "" {
		return User{}, &Error{Status: http.StatusUnauthorized, Message: "empty user"}
	}
	return u, nil
}

// ConfirmEmail marks the identity's email address as confirmed. Admin
// endpoint; requires the service key.
func (c *Client) ConfirmEmail(ctx context.Context, userID string) error {
	if c.serviceKey == "" {
		return fmt.Errorf("identity service key not configured")
	}

	body := strings.NewReader(`{"email_confirm":true}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/admin/users/"+userID, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return providerError(resp)
	}
	return nil
}

// DeleteUser removes the identity from the provider. Admin endpoint;
// requires the service key.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if c.serviceKey == "" {
		return fmt.Errorf("identity service key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/admin/users/"+userID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return providerError(resp)
	}
	return nil
}

// providerError extracts the provider's error message from a non-2xx
// response body.
func providerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Msg != "":
			msg = payload.Msg
		case payload.Error != "":
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
