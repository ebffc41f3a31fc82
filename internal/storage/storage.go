// Package storage is the client for the hosted object store used for
// avatar images. Uploads are upserts against a deterministic per-user key,
// so a re-upload overwrites in place.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const storageTimeout = 30 * time.Second

// extByType maps allowed MIME types to the file extension used in the
// storage key.
var extByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Client talks to the object store's REST surface.
type Client struct {
	baseURL    string
	bucket     string
	serviceKey string
	maxBytes   int64
	allowed    []string
	httpClient *http.Client
}

// New creates a storage client for a single bucket.
func New(baseURL, bucket, serviceKey string, maxBytes int64, allowedTypes []string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		maxBytes:   maxBytes,
		allowed:    allowedTypes,
		httpClient: &http.Client{
			Timeout: storageTimeout,
		},
	}
}

// IsConfigured reports whether a storage endpoint is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// ValidateUpload checks the content type against the allow-list and the
// size against the ceiling. It returns a human-readable reason on
// rejection. Called before any storage I/O.
func (c *Client) ValidateUpload(contentType string, size int64) error {
	allowed := false
	for _, t := range c.allowed {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("unsupported file type %q; allowed types are %s",
			contentType, strings.Join(c.allowed, ", "))
	}
	if size > c.maxBytes {
		return fmt.Errorf("file is %d bytes; the limit is %d bytes", size, c.maxBytes)
	}
	return nil
}

// Ext returns the storage-key extension for an allowed content type.
func Ext(contentType string) string {
	if ext, ok := extByType[contentType]; ok {
		return ext
	}
	return "bin"
}

// avatarKey is the deterministic per-user object key.
func avatarKey(userID, ext string) string {
	return userID + "/avatar." + ext
}

// UploadAvatar writes the avatar object with upsert semantics.
func (c *Client) UploadAvatar(ctx context.Context, userID, contentType string, size int64, r io.Reader) error {
	key := avatarKey(userID, Ext(contentType))
	u := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, r)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("storage upload HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// PublicURL derives the public URL for a user's avatar.
func (c *Client) PublicURL(userID, contentType string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, c.bucket, avatarKey(userID, Ext(contentType)))
}
