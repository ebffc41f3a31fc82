// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/admin.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches the hosted schema
// --------------------------------------------------------------------------

const (
	ApplicationsTable = "applications"
	MatchesTable      = "matches"
	MatchPlayersTable = "match_players"
	BookingsTable     = "court_bookings"
	LadderTeamsTable  = "ladder_teams"
	CoachesTable      = "coaches"
)

// --------------------------------------------------------------------------
// Role and status values — matches the hosted schema enums
// --------------------------------------------------------------------------

const (
	RolePlayer = "player"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusMember   = "member"

	MatchStatusOpen = "open"
)

// ReliabilityBaseline is what onboarding resets reliability_percentage to
// every time it runs.
const ReliabilityBaseline = 30

// Skill levels are NTRP-style ratings stored with one decimal place.
const (
	SkillFloor   = 1.0
	SkillCeiling = 7.0
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Identity provider (hosted auth service)
	IdentityURL        string
	IdentityServiceKey string

	// Blob storage (hosted object store)
	StorageURL    string
	StorageBucket string

	// Row-level data API (PostgREST); the fallback credential path for
	// privileged deletes
	DataAPIURL string

	// Avatar upload limits
	AvatarMaxBytes     int64
	AvatarContentTypes []string

	// Email (welcome mail on approval; empty key disables)
	ResendAPIKey string
	MailFrom     string

	// Session gate for the client shell
	ProtectedPrefixes []string
	LoginPath         string

	// Cache
	CacheEnabled bool

	// Maintenance
	MaintenanceEnabled bool
	JoinExpiryAge      time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("MATCHPOINT_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or MATCHPOINT_DATABASE_URL must be set")
	}

	identityURL := envOr("IDENTITY_URL", "")
	if identityURL == "" {
		return nil, fmt.Errorf("IDENTITY_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		IdentityURL:        strings.TrimRight(identityURL, "/"),
		IdentityServiceKey: envOr("IDENTITY_SERVICE_KEY", ""),

		StorageURL:    strings.TrimRight(envOr("STORAGE_URL", ""), "/"),
		StorageBucket: envOr("STORAGE_BUCKET", "avatars"),

		DataAPIURL: strings.TrimRight(envOr("DATA_API_URL", ""), "/"),

		AvatarMaxBytes: int64(envInt("AVATAR_MAX_BYTES", 5*1024*1024)),
		AvatarContentTypes: envList("AVATAR_CONTENT_TYPES", []string{
			"image/jpeg",
			"image/png",
			"image/webp",
			"image/gif",
		}),

		ResendAPIKey: envOr("RESEND_API_KEY", ""),
		MailFrom:     envOr("MAIL_FROM", "Matchpoint <welcome@matchpoint.club>"),

		ProtectedPrefixes: envList("PROTECTED_PREFIXES", []string{
			"/dashboard",
			"/matches",
			"/bookings",
			"/ladder",
			"/coaching",
			"/profile",
		}),
		LoginPath: envOr("LOGIN_PATH", "/login"),

		CacheEnabled: envBool("CACHE_ENABLED", true),

		MaintenanceEnabled: envBool("MAINTENANCE_ENABLED", true),
		JoinExpiryAge:      time.Duration(envInt("JOIN_EXPIRY_HOURS", 72)) * time.Hour,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
