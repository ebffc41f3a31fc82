// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matchpointhq/matchpoint-api/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and admin CLI
// use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Applications
		"application_by_id":       "SELECT id, email, full_name, role, status, skill_level, reliability_percentage, onboarding_completed, avatar_url FROM applications WHERE id = $1",
		"applications_by_ids":     "SELECT id, email, full_name, role, status, skill_level, reliability_percentage, onboarding_completed, avatar_url FROM applications WHERE id = ANY($1)",
		"application_role":        "SELECT role FROM applications WHERE id = $1",
		"application_set_status":  "UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING id, email, full_name, role, status, skill_level, reliability_percentage, onboarding_completed, avatar_url",
		"application_set_role":    "UPDATE applications SET role = $2, updated_at = NOW() WHERE id = $1",
		"application_onboard":     "UPDATE applications SET skill_level = $2, reliability_percentage = $3, onboarding_completed = true, updated_at = NOW() WHERE id = $1 RETURNING id, email, full_name, role, status, skill_level, reliability_percentage, onboarding_completed, avatar_url",
		"application_set_avatar":  "UPDATE applications SET avatar_url = $2, updated_at = NOW() WHERE id = $1",
		"application_delete":      "DELETE FROM applications WHERE id = $1",
		"applications_by_status":  "SELECT id, email, full_name, role, status, skill_level, reliability_percentage, onboarding_completed, avatar_url FROM applications WHERE status = $1 ORDER BY created_at ASC",

		// Matches
		"match_by_id":   "SELECT id, status, current_players, max_players, skill_min, skill_max FROM matches WHERE id = $1",
		"match_delete":  "DELETE FROM matches WHERE id = $1",
		"matches_open":  "SELECT id, status, current_players, max_players, skill_min, skill_max FROM matches WHERE status = $1 ORDER BY created_at DESC LIMIT 200",

		// Match players
		"match_player_by_pair":          "SELECT id, match_id, player_id, status FROM match_players WHERE match_id = $1 AND player_id = $2",
		"match_player_insert":           "INSERT INTO match_players (id, match_id, player_id, status) VALUES ($1, $2, $3, $4)",
		"match_players_delete_by_match": "DELETE FROM match_players WHERE match_id = $1",

		// Court bookings
		"booking_by_id":  "SELECT id, user_id, court, starts_at, ends_at, status FROM court_bookings WHERE id = $1",
		"booking_delete": "DELETE FROM court_bookings WHERE id = $1",

		// Ladder teams
		"ladder_max_rank":   "SELECT COALESCE(MAX(rank), 0) FROM ladder_teams",
		"ladder_membership": "SELECT id, rank, player1_id, player2_id, team_name FROM ladder_teams WHERE player1_id = ANY($1) OR player2_id = ANY($1)",
		"ladder_insert":     "INSERT INTO ladder_teams (id, rank, player1_id, player2_id, team_name) VALUES ($1, $2, $3, $4, $5)",
		"ladder_standings":  "SELECT id, rank, player1_id, player2_id, team_name FROM ladder_teams ORDER BY rank ASC",

		// Coaches
		"coach_by_id": "SELECT id, rate, specialization, level, availability FROM coaches WHERE id = $1",
		"coach_list":  "SELECT id, rate, specialization, level, availability FROM coaches ORDER BY id ASC",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
