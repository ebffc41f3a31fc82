// Package club holds the membership domain types and the Postgres-backed
// store the API handlers and admin CLI read and write through.
package club

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Application is the membership profile record, keyed by the identity
// provider's account id.
type Application struct {
	ID                    string  `json:"id"`
	Email                 string  `json:"email"`
	FullName              string  `json:"full_name"`
	Role                  string  `json:"role"`   // player, coach, admin
	Status                string  `json:"status"` // pending, approved, member
	SkillLevel            float64 `json:"skill_level"`
	ReliabilityPercentage int     `json:"reliability_percentage"`
	OnboardingCompleted   bool    `json:"onboarding_completed"`
	AvatarURL             *string `json:"avatar_url"`
}

// Match is an open-play session players can apply to join.
type Match struct {
	ID             string   `json:"id"`
	Status         string   `json:"status"`
	CurrentPlayers int      `json:"current_players"`
	MaxPlayers     int      `json:"max_players"`
	SkillMin       *float64 `json:"skill_min"`
	SkillMax       *float64 `json:"skill_max"`
}

// MatchPlayer is a join record for a (match, player) pair.
type MatchPlayer struct {
	ID       string `json:"id"`
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
}

// CourtBooking is a court reservation owned by a single user.
type CourtBooking struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Court    string    `json:"court"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
}

// LadderTeam is a paired-player entry in the ranked ladder. Ranks are
// positive, strictly increasing, and never reused.
type LadderTeam struct {
	ID        string `json:"id"`
	Rank      int    `json:"rank"`
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
	TeamName  string `json:"team_name"`
}

// Coach is a coaching profile; all fields except id are partial-update
// targets.
type Coach struct {
	ID             string   `json:"id"`
	Rate           *float64 `json:"rate"`
	Specialization *string  `json:"specialization"`
	Level          *string  `json:"level"`
	Availability   *string  `json:"availability"`
}
