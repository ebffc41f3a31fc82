package club

import (
	"math"
	"strings"
)

// RoundSkill normalizes a skill level to one decimal place.
func RoundSkill(v float64) float64 {
	return math.Round(v*10) / 10
}

// SkillInBracket reports whether a player's skill level lies within the
// inclusive [min, max] bracket. A nil bound means the bracket is not
// enforced on that side.
func SkillInBracket(skill float64, min, max *float64) bool {
	if min != nil && skill < *min {
		return false
	}
	if max != nil && skill > *max {
		return false
	}
	return true
}

// TeamName derives a ladder team name from two full names by joining each
// player's first name token with " & ". A missing name falls back to a
// positional placeholder.
func TeamName(full1, full2 string) string {
	return firstName(full1, "Player 1") + " & " + firstName(full2, "Player 2")
}

func firstName(full, fallback string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}
