package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/matchpointhq/matchpoint-api/internal/api/handler"
	"github.com/matchpointhq/matchpoint-api/internal/config"
)

// SessionCookieName is the cookie the client shell stores its access
// token in.
const SessionCookieName = "mp-access-token"

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, verifier handler.TokenVerifier, roles handler.RoleStore, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// Session gate for the client shell's page prefixes
	r.Use(SessionGate(cfg.ProtectedPrefixes, cfg.LoginPath, CookieSession(SessionCookieName, verifier)))

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public — join-match carries its own player id in the body and
		// the directory endpoints back the client shell's browse pages.
		r.Post("/matches/join", h.JoinMatch)
		r.Get("/matches", h.ListMatches)
		r.Get("/ladder", h.LadderStandings)
		r.Get("/coaches", h.ListCoaches)

		// Verified callers acting on their own records
		r.Group(func(r chi.Router) {
			r.Use(handler.Authenticator(verifier))

			r.Get("/me", h.Me)
			r.Post("/onboarding", h.CompleteOnboarding)
			r.Post("/profile/avatar", h.UploadAvatar)
			r.Post("/ladder/register", h.RegisterTeam)
			r.Post("/bookings/delete", h.DeleteBooking)
		})

		// Admin-only
		r.Group(func(r chi.Router) {
			r.Use(handler.Authenticator(verifier))
			r.Use(handler.RequireAdmin(roles))

			r.Post("/admin/applications/approve", h.ApproveApplication)
			r.Post("/admin/matches/delete", h.DeleteMatch)
			r.Post("/admin/users/delete", h.DeleteUser)
			r.Post("/admin/coaches/update", h.UpdateCoach)
		})
	})

	return r
}
