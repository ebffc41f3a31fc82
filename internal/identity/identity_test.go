package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUserFromToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("path = %q, want /user", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Authorization = %q, want caller token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-1","email":"u@example.com"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "service-key")
	u, err := c.UserFromToken(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("UserFromToken() error: %v", err)
	}
	if u.ID != "user-1" || u.Email != "u@example.com" {
		t.Errorf("user = %+v", u)
	}
}

func TestUserFromTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"invalid JWT"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.UserFromToken(context.Background(), "bad")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *identity.Error", err)
	}
	if perr.Status != http.StatusUnauthorized || perr.Message != "invalid JWT" {
		t.Errorf("provider error = %+v", perr)
	}
}

func TestUserFromTokenEmptyUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.UserFromToken(context.Background(), "tok"); err == nil {
		t.Fatal("want error for empty user payload")
	}
}

func TestConfirmEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/admin/users/user-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization = %q, want service key", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "service-key")
	if err := c.ConfirmEmail(context.Background(), "user-1"); err != nil {
		t.Fatalf("ConfirmEmail() error: %v", err)
	}
}

func TestConfirmEmailNoServiceKey(t *testing.T) {
	c := New("http://localhost:1", "")
	if err := c.ConfirmEmail(context.Background(), "user-1"); err == nil {
		t.Fatal("want configuration error without service key")
	}
}

func TestDeleteUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/admin/users/user-2" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "service-key")
	if err := c.DeleteUser(context.Background(), "user-2"); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
}

func TestDeleteUserProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Database error"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "service-key")
	err := c.DeleteUser(context.Background(), "user-2")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *identity.Error", err)
	}
	if perr.Message != "Database error" {
		t.Errorf("message = %q", perr.Message)
	}
}
