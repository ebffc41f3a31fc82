// Package handler provides HTTP handlers for all API endpoints. Every
// mutation route runs the same linear pipeline: authenticate → authorize →
// validate body shape → perform the writes → verify where required →
// respond. Handlers hold no state between requests; every row is
// re-fetched per request.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/cache"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
)

// Store is the data access surface the handlers consume. Implemented by
// club.Store; tests substitute a map-backed fake.
type Store interface {
	ApplicationByID(ctx context.Context, id string) (club.Application, error)
	ApplicationsByIDs(ctx context.Context, ids []string) ([]club.Application, error)
	SetApplicationStatus(ctx context.Context, id, status string) (club.Application, error)
	Onboard(ctx context.Context, id string, skill float64, reliability int) (club.Application, error)
	SetAvatarURL(ctx context.Context, id, url string) error
	DeleteApplication(ctx context.Context, id string) error

	MatchByID(ctx context.Context, id string) (club.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	DeleteMatchPlayers(ctx context.Context, matchID string) error
	MatchPlayerByPair(ctx context.Context, matchID, playerID string) (club.MatchPlayer, error)
	InsertMatchPlayer(ctx context.Context, mp club.MatchPlayer) error
	OpenMatches(ctx context.Context, status string) ([]club.Match, error)

	BookingByID(ctx context.Context, id string) (club.CourtBooking, error)
	DeleteBooking(ctx context.Context, id string) error

	MaxLadderRank(ctx context.Context) (int, error)
	LadderMembership(ctx context.Context, playerIDs []string) ([]club.LadderTeam, error)
	InsertLadderTeam(ctx context.Context, t club.LadderTeam) error
	LadderStandings(ctx context.Context) ([]club.LadderTeam, error)

	CoachByID(ctx context.Context, id string) (club.Coach, error)
	UpdateCoach(ctx context.Context, id string, fields map[string]any) (club.Coach, error)
	Coaches(ctx context.Context) ([]club.Coach, error)
}

// Identity is the admin surface of the identity provider.
type Identity interface {
	ConfirmEmail(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// ObjectStore is the avatar blob store.
type ObjectStore interface {
	ValidateUpload(contentType string, size int64) error
	UploadAvatar(ctx context.Context, userID, contentType string, size int64, r io.Reader) error
	PublicURL(userID, contentType string) string
}

// RowAPI is the caller-credentialed data API used as the secondary
// attempt in the delete-match fallback strategy.
type RowAPI interface {
	Delete(ctx context.Context, table, idColumn, id, bearer string) error
}

// WelcomeMailer sends the post-approval welcome email. May be absent.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email, fullName string) error
}

// HealthChecker verifies database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps bundles the injected collaborators.
type Deps struct {
	Store   Store
	Ident   Identity
	Objects ObjectStore
	RowAPI  RowAPI
	Mailer  WelcomeMailer // nil disables welcome email
	Health  HealthChecker
	Cache   *cache.Cache
	Cfg     *config.Config
	Logger  *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store   Store
	ident   Identity
	objects ObjectStore
	rowAPI  RowAPI
	mailer  WelcomeMailer
	health  HealthChecker
	cache   *cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   d.Store,
		ident:   d.Ident,
		objects: d.Objects,
		rowAPI:  d.RowAPI,
		mailer:  d.Mailer,
		health:  d.Health,
		cache:   d.Cache,
		cfg:     d.Cfg,
		logger:  logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Matchpoint Club API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.health.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
