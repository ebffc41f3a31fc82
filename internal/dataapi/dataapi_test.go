package dataapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDelete(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth, gotPrefer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotPrefer = r.Header.Get("Prefer")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Delete(context.Background(), "matches", "id", "m-1", "caller-token"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", gotMethod)
	}
	if gotPath != "/matches" {
		t.Errorf("path = %q, want /matches", gotPath)
	}
	if gotQuery != "id=eq.m-1" {
		t.Errorf("query = %q, want id=eq.m-1", gotQuery)
	}
	if gotAuth != "Bearer caller-token" {
		t.Errorf("Authorization = %q, want the caller's token", gotAuth)
	}
	if gotPrefer != "return=minimal" {
		t.Errorf("Prefer = %q", gotPrefer)
	}
}

func TestDeleteRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"row-level security"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Delete(context.Background(), "matches", "id", "m-1", "tok"); err == nil {
		t.Fatal("want error on non-2xx response")
	}
}

func TestDeleteUnconfigured(t *testing.T) {
	c := New("")
	if err := c.Delete(context.Background(), "matches", "id", "m-1", "tok"); err == nil {
		t.Fatal("want configuration error with empty base URL")
	}
	if c.IsConfigured() {
		t.Error("IsConfigured() = true, want false")
	}
}
