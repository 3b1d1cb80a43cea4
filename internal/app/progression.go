package app

import (
	"safety-training-service/internal/domain"
)

// pointsPerLevel is the cumulative-point span of one level.
const pointsPerLevel = 100

// LevelForPoints derives the level for a cumulative point total. The level
// is never stored independently of this rule.
func LevelForPoints(points int) int {
	return points/pointsPerLevel + 1
}

// ApplyProgression merges earned points into a progression snapshot and
// recomputes the level. Negative awards are rejected before any state
// changes. The second return reports whether the update crossed a level
// boundary.
func ApplyProgression(p domain.UserProgression, pointsEarned int) (domain.UserProgression, bool, error) {
	if pointsEarned < 0 {
		return domain.UserProgression{}, false, domain.ErrInvalidAward
	}
	oldLevel := LevelForPoints(p.Points)
	p.Points += pointsEarned
	p.Level = LevelForPoints(p.Points)
	return p, p.Level > oldLevel, nil
}
