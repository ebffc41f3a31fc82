package club

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed implementation of the club data access
// layer. Queries run against prepared statements registered by internal/db.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --------------------------------------------------------------------------
// Applications
// --------------------------------------------------------------------------

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.Role, &a.Status,
		&a.SkillLevel, &a.ReliabilityPercentage, &a.OnboardingCompleted, &a.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, fmt.Errorf("scan application: %w", err)
	}
	return a, nil
}

// ApplicationByID fetches a single membership profile.
func (s *Store) ApplicationByID(ctx context.Context, id string) (Application, error) {
	return scanApplication(s.pool.QueryRow(ctx, "application_by_id", id))
}

// ApplicationsByIDs fetches all profiles matching the given ids in one
// batched lookup.
func (s *Store) ApplicationsByIDs(ctx context.Context, ids []string) ([]Application, error) {
	rows, err := s.pool.Query(ctx, "applications_by_ids", ids)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// ApplicationRole returns the stored role for a verified user id.
func (s *Store) ApplicationRole(ctx context.Context, id string) (string, error) {
	var role string
	err := s.pool.QueryRow(ctx, "application_role", id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query role: %w", err)
	}
	return role, nil
}

// SetApplicationStatus updates a profile's membership status and returns
// the updated row.
func (s *Store) SetApplicationStatus(ctx context.Context, id, status string) (Application, error) {
	return scanApplication(s.pool.QueryRow(ctx, "application_set_status", id, status))
}

// SetApplicationRole updates a profile's role. Used by the admin CLI.
func (s *Store) SetApplicationRole(ctx context.Context, id, role string) error {
	tag, err := s.pool.Exec(ctx, "application_set_role", id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Onboard stores the skill level, resets reliability to the baseline, and
// marks onboarding complete. Returns the updated row.
func (s *Store) Onboard(ctx context.Context, id string, skill float64, reliability int) (Application, error) {
	return scanApplication(s.pool.QueryRow(ctx, "application_onboard", id, skill, reliability))
}

// SetAvatarURL writes the public avatar URL onto the profile.
func (s *Store) SetAvatarURL(ctx context.Context, id, url string) error {
	tag, err := s.pool.Exec(ctx, "application_set_avatar", id, url)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteApplication removes a membership profile.
func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "application_delete", id); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}

// ApplicationsByStatus lists profiles in a given status, oldest first.
func (s *Store) ApplicationsByStatus(ctx context.Context, status string) ([]Application, error) {
	rows, err := s.pool.Query(ctx, "applications_by_status", status)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// --------------------------------------------------------------------------
// Matches
// --------------------------------------------------------------------------

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	err := row.Scan(&m.ID, &m.Status, &m.CurrentPlayers, &m.MaxPlayers, &m.SkillMin, &m.SkillMax)
	if errors.Is(err, pgx.ErrNoRows) {
		return Match{}, ErrNotFound
	}
	if err != nil {
		return Match{}, fmt.Errorf("scan match: %w", err)
	}
	return m, nil
}

// MatchByID fetches a single match.
func (s *Store) MatchByID(ctx context.Context, id string) (Match, error) {
	return scanMatch(s.pool.QueryRow(ctx, "match_by_id", id))
}

// DeleteMatch removes the match row. Dependent match_players rows must be
// removed first (foreign-key ordering).
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "match_delete", id); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// DeleteMatchPlayers removes all join records for a match.
func (s *Store) DeleteMatchPlayers(ctx context.Context, matchID string) error {
	if _, err := s.pool.Exec(ctx, "match_players_delete_by_match", matchID); err != nil {
		return fmt.Errorf("delete match players: %w", err)
	}
	return nil
}

// OpenMatches lists matches in the given status, newest first.
func (s *Store) OpenMatches(ctx context.Context, status string) ([]Match, error) {
	rows, err := s.pool.Query(ctx, "matches_open", status)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// MatchPlayerByPair fetches the join record for a (match, player) pair.
func (s *Store) MatchPlayerByPair(ctx context.Context, matchID, playerID string) (MatchPlayer, error) {
	var mp MatchPlayer
	err := s.pool.QueryRow(ctx, "match_player_by_pair", matchID, playerID).
		Scan(&mp.ID, &mp.MatchID, &mp.PlayerID, &mp.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return MatchPlayer{}, ErrNotFound
	}
	if err != nil {
		return MatchPlayer{}, fmt.Errorf("scan match player: %w", err)
	}
	return mp, nil
}

// InsertMatchPlayer writes a new join record.
func (s *Store) InsertMatchPlayer(ctx context.Context, mp MatchPlayer) error {
	if _, err := s.pool.Exec(ctx, "match_player_insert", mp.ID, mp.MatchID, mp.PlayerID, mp.Status); err != nil {
		return fmt.Errorf("insert match player: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Court bookings
// --------------------------------------------------------------------------

// BookingByID fetches a single booking.
func (s *Store) BookingByID(ctx context.Context, id string) (CourtBooking, error) {
	var b CourtBooking
	err := s.pool.QueryRow(ctx, "booking_by_id", id).
		Scan(&b.ID, &b.UserID, &b.Court, &b.StartsAt, &b.EndsAt, &b.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return CourtBooking{}, ErrNotFound
	}
	if err != nil {
		return CourtBooking{}, fmt.Errorf("scan booking: %w", err)
	}
	return b, nil
}

// DeleteBooking removes a booking row.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "booking_delete", id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Ladder teams
// --------------------------------------------------------------------------

// MaxLadderRank returns the highest assigned rank, or 0 when no teams
// exist. The next rank is max+1; the read-then-insert is not serialized,
// so racing registrations can briefly duplicate a rank. RenumberLadder
// repairs that out of band.
func (s *Store) MaxLadderRank(ctx context.Context) (int, error) {
	var max int
	if err := s.pool.QueryRow(ctx, "ladder_max_rank").Scan(&max); err != nil {
		return 0, fmt.Errorf("query max rank: %w", err)
	}
	return max, nil
}

// LadderMembership returns any teams where one of the given player ids
// appears as player1 or player2.
func (s *Store) LadderMembership(ctx context.Context, playerIDs []string) ([]LadderTeam, error) {
	rows, err := s.pool.Query(ctx, "ladder_membership", playerIDs)
	if err != nil {
		return nil, fmt.Errorf("query ladder membership: %w", err)
	}
	defer rows.Close()

	var teams []LadderTeam
	for rows.Next() {
		var t LadderTeam
		if err := rows.Scan(&t.ID, &t.Rank, &t.Player1ID, &t.Player2ID, &t.TeamName); err != nil {
			return nil, fmt.Errorf("scan ladder team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// InsertLadderTeam writes a new team row.
func (s *Store) InsertLadderTeam(ctx context.Context, t LadderTeam) error {
	if _, err := s.pool.Exec(ctx, "ladder_insert", t.ID, t.Rank, t.Player1ID, t.Player2ID, t.TeamName); err != nil {
		return fmt.Errorf("insert ladder team: %w", err)
	}
	return nil
}

// LadderStandings lists all teams ordered by rank.
func (s *Store) LadderStandings(ctx context.Context) ([]LadderTeam, error) {
	rows, err := s.pool.Query(ctx, "ladder_standings")
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var teams []LadderTeam
	for rows.Next() {
		var t LadderTeam
		if err := rows.Scan(&t.ID, &t.Rank, &t.Player1ID, &t.Player2ID, &t.TeamName); err != nil {
			return nil, fmt.Errorf("scan ladder team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// RenumberLadder rewrites ranks contiguously in current rank order.
// Operational repair for duplicate ranks left by racing registrations.
func (s *Store) RenumberLadder(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE ladder_teams lt
		SET rank = ranked.new_rank
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY rank ASC, created_at ASC) AS new_rank
			FROM ladder_teams
		) ranked
		WHERE ranked.id = lt.id AND ranked.new_rank <> lt.rank`)
	if err != nil {
		return 0, fmt.Errorf("renumber ladder: %w", err)
	}
	return tag.RowsAffected(), nil
}

// --------------------------------------------------------------------------
// Coaches
// --------------------------------------------------------------------------

func scanCoach(row pgx.Row) (Coach, error) {
	var c Coach
	err := row.Scan(&c.ID, &c.Rate, &c.Specialization, &c.Level, &c.Availability)
	if errors.Is(err, pgx.ErrNoRows) {
		return Coach{}, ErrNotFound
	}
	if err != nil {
		return Coach{}, fmt.Errorf("scan coach: %w", err)
	}
	return c, nil
}

// CoachByID fetches a single coaching profile.
func (s *Store) CoachByID(ctx context.Context, id string) (Coach, error) {
	return scanCoach(s.pool.QueryRow(ctx, "coach_by_id", id))
}

// Coaches lists all coaching profiles.
func (s *Store) Coaches(ctx context.Context) ([]Coach, error) {
	rows, err := s.pool.Query(ctx, "coach_list")
	if err != nil {
		return nil, fmt.Errorf("query coaches: %w", err)
	}
	defer rows.Close()

	var coaches []Coach
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

// coachColumns is the whitelist of partial-update targets.
var coachColumns = []string{"rate", "specialization", "level", "availability"}

// UpdateCoach writes only the provided fields (dynamic SET, whitelisted
// columns) and returns the updated row. Values are passed through without
// per-field validation.
func (s *Store) UpdateCoach(ctx context.Context, id string, fields map[string]any) (Coach, error) {
	var (
		sets []string
		args []any
	)
	args = append(args, id)
	for _, col := range coachColumns {
		v, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return Coach{}, fmt.Errorf("no fields to update")
	}

	sql := fmt.Sprintf(
		"UPDATE coaches SET %s, updated_at = NOW() WHERE id = $1 RETURNING id, rate, specialization, level, availability",
		strings.Join(sets, ", "))
	return scanCoach(s.pool.QueryRow(ctx, sql, args...))
}

// --------------------------------------------------------------------------
// Maintenance
// --------------------------------------------------------------------------

// ExpireStaleJoins marks pending join requests older than the given age as
// expired.
func (s *Store) ExpireStaleJoins(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE match_players
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending'
		  AND created_at < NOW() - $1::interval`,
		age.String())
	if err != nil {
		return 0, fmt.Errorf("expire stale joins: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeOrphanJoins removes join records whose match no longer exists.
func (s *Store) PurgeOrphanJoins(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM match_players mp
		WHERE NOT EXISTS (SELECT 1 FROM matches m WHERE m.id = mp.match_id)`)
	if err != nil {
		return 0, fmt.Errorf("purge orphan joins: %w", err)
	}
	return tag.RowsAffected(), nil
}
