package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

func TestValidateUpload(t *testing.T) {
	c := New("http://store", "avatars", "key", 5*1024*1024, allowedTypes)

	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"jpeg under limit", "image/jpeg", 1024, false},
		{"png at limit", "image/png", 5 * 1024 * 1024, false},
		{"pdf", "application/pdf", 1024, true},
		{"oversize", "image/jpeg", 6 * 1024 * 1024, true},
		{"empty type", "", 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidateUpload(tt.contentType, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpload(%q, %d) error = %v, wantErr %v", tt.contentType, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestUploadAvatar(t *testing.T) {
	var gotPath, gotUpsert, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "avatars", "service-key", 5*1024*1024, allowedTypes)
	body := strings.NewReader("fake image bytes")
	if err := c.UploadAvatar(context.Background(), "user-1", "image/png", int64(body.Len()), body); err != nil {
		t.Fatalf("UploadAvatar() error: %v", err)
	}

	if gotPath != "/object/avatars/user-1/avatar.png" {
		t.Errorf("path = %q, want deterministic per-user key", gotPath)
	}
	if gotUpsert != "true" {
		t.Errorf("x-upsert = %q, want true", gotUpsert)
	}
	if gotAuth != "Bearer service-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestUploadAvatarServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("bucket policy"))
	}))
	defer srv.Close()

	c := New(srv.URL, "avatars", "key", 5*1024*1024, allowedTypes)
	err := c.UploadAvatar(context.Background(), "user-1", "image/jpeg", 4, strings.NewReader("data"))
	if err == nil {
		t.Fatal("want error on non-2xx upload response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestPublicURL(t *testing.T) {
	c := New("http://store", "avatars", "key", 0, nil)
	got := c.PublicURL("user-1", "image/jpeg")
	want := "http://store/object/public/avatars/user-1/avatar.jpg"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"image/webp", "webp"},
		{"image/gif", "gif"},
		{"application/octet-stream", "bin"},
	}
	for _, tt := range tests {
		if got := Ext(tt.contentType); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}
