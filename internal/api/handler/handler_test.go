package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/cache"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
	"github.com/matchpointhq/matchpoint-api/internal/identity"
)

// --------------------------------------------------------------------------
// Map-backed fakes
// --------------------------------------------------------------------------

type fakeStore struct {
	apps     map[string]club.Application
	matches  map[string]club.Match
	joins    map[string]club.MatchPlayer // keyed matchID + "/" + playerID
	bookings map[string]club.CourtBooking
	teams    []club.LadderTeam
	coaches  map[string]club.Coach

	setStatusErr          error
	deleteMatchErr        error
	deleteMatchPlayersErr error
	setAvatarErr          error
	insertJoinSilent      bool // insert reports success without storing
	deleteBookingSilent   bool // delete reports success without removing
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:     make(map[string]club.Application),
		matches:  make(map[string]club.Match),
		joins:    make(map[string]club.MatchPlayer),
		bookings: make(map[string]club.CourtBooking),
		coaches:  make(map[string]club.Coach),
	}
}

func joinKey(matchID, playerID string) string { return matchID + "/" + playerID }

func (s *fakeStore) ApplicationByID(ctx context.Context, id string) (club.Application, error) {
	app, ok := s.apps[id]
	if !ok {
		return club.Application{}, club.ErrNotFound
	}
	return app, nil
}

func (s *fakeStore) ApplicationsByIDs(ctx context.Context, ids []string) ([]club.Application, error) {
	var out []club.Application
	for _, id := range ids {
		if app, ok := s.apps[id]; ok {
			out = append(out, app)
		}
	}
	return out, nil
}

func (s *fakeStore) SetApplicationStatus(ctx context.Context, id, status string) (club.Application, error) {
	if s.setStatusErr != nil {
		return club.Application{}, s.setStatusErr
	}
	app, ok := s.apps[id]
	if !ok {
		return club.Application{}, club.ErrNotFound
	}
	app.Status = status
	s.apps[id] = app
	return app, nil
}

func (s *fakeStore) Onboard(ctx context.Context, id string, skill float64, reliability int) (club.Application, error) {
	app, ok := s.apps[id]
	if !ok {
		return club.Application{}, club.ErrNotFound
	}
	app.SkillLevel = skill
	app.ReliabilityPercentage = reliability
	app.OnboardingCompleted = true
	s.apps[id] = app
	return app, nil
}

func (s *fakeStore) SetAvatarURL(ctx context.Context, id, url string) error {
	if s.setAvatarErr != nil {
		return s.setAvatarErr
	}
	app, ok := s.apps[id]
	if !ok {
		return club.ErrNotFound
	}
	app.AvatarURL = &url
	s.apps[id] = app
	return nil
}

func (s *fakeStore) DeleteApplication(ctx context.Context, id string) error {
	delete(s.apps, id)
	return nil
}

func (s *fakeStore) MatchByID(ctx context.Context, id string) (club.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return club.Match{}, club.ErrNotFound
	}
	return m, nil
}

func (s *fakeStore) DeleteMatch(ctx context.Context, id string) error {
	if s.deleteMatchErr != nil {
		return s.deleteMatchErr
	}
	delete(s.matches, id)
	return nil
}

func (s *fakeStore) DeleteMatchPlayers(ctx context.Context, matchID string) error {
	if s.deleteMatchPlayersErr != nil {
		return s.deleteMatchPlayersErr
	}
	for k, mp := range s.joins {
		if mp.MatchID == matchID {
			delete(s.joins, k)
		}
	}
	return nil
}

func (s *fakeStore) MatchPlayerByPair(ctx context.Context, matchID, playerID string) (club.MatchPlayer, error) {
	mp, ok := s.joins[joinKey(matchID, playerID)]
	if !ok {
		return club.MatchPlayer{}, club.ErrNotFound
	}
	return mp, nil
}

func (s *fakeStore) InsertMatchPlayer(ctx context.Context, mp club.MatchPlayer) error {
	if s.insertJoinSilent {
		return nil
	}
	s.joins[joinKey(mp.MatchID, mp.PlayerID)] = mp
	return nil
}

func (s *fakeStore) OpenMatches(ctx context.Context, status string) ([]club.Match, error) {
	var out []club.Match
	for _, m := range s.matches {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) BookingByID(ctx context.Context, id string) (club.CourtBooking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return club.CourtBooking{}, club.ErrNotFound
	}
	return b, nil
}

func (s *fakeStore) DeleteBooking(ctx context.Context, id string) error {
	if s.deleteBookingSilent {
		return nil
	}
	delete(s.bookings, id)
	return nil
}

func (s *fakeStore) MaxLadderRank(ctx context.Context) (int, error) {
	max := 0
	for _, t := range s.teams {
		if t.Rank > max {
			max = t.Rank
		}
	}
	return max, nil
}

func (s *fakeStore) LadderMembership(ctx context.Context, playerIDs []string) ([]club.LadderTeam, error) {
	members := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		members[id] = true
	}
	var out []club.LadderTeam
	for _, t := range s.teams {
		if members[t.Player1ID] || members[t.Player2ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertLadderTeam(ctx context.Context, t club.LadderTeam) error {
	s.teams = append(s.teams, t)
	return nil
}

func (s *fakeStore) LadderStandings(ctx context.Context) ([]club.LadderTeam, error) {
	return s.teams, nil
}

func (s *fakeStore) CoachByID(ctx context.Context, id string) (club.Coach, error) {
	c, ok := s.coaches[id]
	if !ok {
		return club.Coach{}, club.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) UpdateCoach(ctx context.Context, id string, fields map[string]any) (club.Coach, error) {
	c, ok := s.coaches[id]
	if !ok {
		return club.Coach{}, club.ErrNotFound
	}
	for name, v := range fields {
		switch name {
		case "rate":
			if f, ok := v.(float64); ok {
				c.Rate = &f
			}
		case "specialization":
			if str, ok := v.(string); ok {
				c.Specialization = &str
			}
		case "level":
			if str, ok := v.(string); ok {
				c.Level = &str
			}
		case "availability":
			if str, ok := v.(string); ok {
				c.Availability = &str
			}
		}
	}
	s.coaches[id] = c
	return c, nil
}

func (s *fakeStore) Coaches(ctx context.Context) ([]club.Coach, error) {
	var out []club.Coach
	for _, c := range s.coaches {
		out = append(out, c)
	}
	return out, nil
}

type fakeIdentity struct {
	users      map[string]identity.User // token -> user
	confirmErr error
	deleteErr  error
	confirmed  []string
	deleted    []string
}

func (f *fakeIdentity) UserFromToken(ctx context.Context, token string) (identity.User, error) {
	u, ok := f.users[token]
	if !ok {
		return identity.User{}, &identity.Error{Status: http.StatusUnauthorized, Message: "invalid JWT"}
	}
	return u, nil
}

func (f *fakeIdentity) ConfirmEmail(ctx context.Context, userID string) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, userID)
	return nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeObjects struct {
	maxBytes  int64
	uploads   int
	uploadErr error
}

func (f *fakeObjects) ValidateUpload(contentType string, size int64) error {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return fmt.Errorf("unsupported file type %q; allowed types are image/jpeg, image/png", contentType)
	}
	if size > f.maxBytes {
		return fmt.Errorf("file is %d bytes; the limit is %d bytes", size, f.maxBytes)
	}
	return nil
}

func (f *fakeObjects) UploadAvatar(ctx context.Context, userID, contentType string, size int64, r io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads++
	return nil
}

func (f *fakeObjects) PublicURL(userID, contentType string) string {
	return "https://cdn.example.com/avatars/" + userID + "/avatar.jpg"
}

type fakeRowAPI struct {
	calls []string // "table/column/id/bearer"
	err   error
}

func (f *fakeRowAPI) Delete(ctx context.Context, table, idColumn, id, bearer string) error {
	f.calls = append(f.calls, table+"/"+idColumn+"/"+id+"/"+bearer)
	return f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendWelcome(ctx context.Context, email, fullName string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHandler(s Store, ident Identity, objects ObjectStore, rows RowAPI, m WelcomeMailer) *Handler {
	return New(Deps{
		Store:   s,
		Ident:   ident,
		Objects: objects,
		RowAPI:  rows,
		Mailer:  m,
		Cache:   cache.New(true),
		Cfg:     &config.Config{},
		Logger:  discardLogger(),
	})
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches a verified caller the way Authenticator does.
func asUser(r *http.Request, userID, token string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
	ctx = context.WithValue(ctx, ctxKeyToken, token)
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorResponse {
	t.Helper()
	var resp respond.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func fptr(v float64) *float64 { return &v }

var errBoom = errors.New("boom")
