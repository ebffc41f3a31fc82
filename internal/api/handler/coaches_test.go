package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matchpointhq/matchpoint-api/internal/club"
)

func TestUpdateCoach(t *testing.T) {
	store := newFakeStore()
	store.coaches["c-1"] = club.Coach{ID: "c-1"}
	h := testHandler(store, &fakeIdentity{}, nil, nil, nil)

	body := map[string]any{"coachId": "c-1", "rate": 80.0, "specialization": "serve technique"}
	req := asUser(jsonRequest(t, http.MethodPost, "/api/v1/admin/coaches/update", body), "admin-1", "tok")
	rec := httptest.NewRecorder()
	h.UpdateCoach(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	coach := store.coaches["c-1"]
	if coach.Rate == nil || *coach.Rate != 80.0 {
		t.Errorf("rate = %v, want 80", coach.Rate)
	}
	if coach.Specialization == nil || *coach.Specialization != "serve technique" {
		t.Errorf("specialization = %v, want %q", coach.Specialization, "serve technique")
	}
	if coach.Level != nil {
		t.Errorf("level = %v, want untouched nil", coach.Level)
	}
}

func TestUpdateCoachNoFields(t *testing.T) {
	store := newFakeStore()
	store.coaches["c-1"] = club.Coach{ID: "c-1"}
	h := testHandler(store, &fakeIdentity{}, nil, nil, nil)

	req := asUser(jsonRequest(t, http.MethodPost, "/api/v1/admin/coaches/update", map[string]any{"coachId": "c-1"}), "admin-1", "tok")
	rec := httptest.NewRecorder()
	h.UpdateCoach(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Message != "No fields to update" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

// Fields outside the update whitelist are dropped; a body carrying only
// unknown fields is the same as an empty one.
func TestUpdateCoachIgnoresUnknownFields(t *testing.T) {
	store := newFakeStore()
	store.coaches["c-1"] = club.Coach{ID: "c-1"}
	h := testHandler(store, &fakeIdentity{}, nil, nil, nil)

	body := map[string]any{"coachId": "c-1", "id": "c-2", "salary": 9000}
	req := asUser(jsonRequest(t, http.MethodPost, "/api/v1/admin/coaches/update", body), "admin-1", "tok")
	rec := httptest.NewRecorder()
	h.UpdateCoach(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Message != "No fields to update" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestUpdateCoachMissingID(t *testing.T) {
	h := testHandler(newFakeStore(), &fakeIdentity{}, nil, nil, nil)

	req := asUser(jsonRequest(t, http.MethodPost, "/api/v1/admin/coaches/update", map[string]any{"rate": 80.0}), "admin-1", "tok")
	rec := httptest.NewRecorder()
	h.UpdateCoach(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Message != "coachId is required" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestUpdateCoachNotFound(t *testing.T) {
	h := testHandler(newFakeStore(), &fakeIdentity{}, nil, nil, nil)

	body := map[string]any{"coachId": "ghost", "rate": 80.0}
	req := asUser(jsonRequest(t, http.MethodPost, "/api/v1/admin/coaches/update", body), "admin-1", "tok")
	rec := httptest.NewRecorder()
	h.UpdateCoach(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
