package app

import (
	"fmt"

	"safety-training-service/internal/domain"
)

// ParseCondition validates a raw condition payload against the closed set
// of known kinds. Unknown kinds are rejected at catalog-load time rather
// than silently never matching.
func ParseCondition(kind string, threshold int) (domain.Condition, error) {
	switch domain.ConditionKind(kind) {
	case domain.ConditionTestsCompleted, domain.ConditionPoints,
		domain.ConditionPerfectScore, domain.ConditionCoursesCompleted:
		return domain.Condition{Kind: domain.ConditionKind(kind), Threshold: threshold}, nil
	default:
		return domain.Condition{}, fmt.Errorf("%w: %q", domain.ErrUnknownCondition, kind)
	}
}

// statistic selects the value a condition kind is checked against.
func statistic(stats domain.UserStats, kind domain.ConditionKind) int {
	switch kind {
	case domain.ConditionTestsCompleted:
		return stats.TestsCompleted
	case domain.ConditionPoints:
		return stats.Points
	case domain.ConditionPerfectScore:
		return stats.PerfectScores
	case domain.ConditionCoursesCompleted:
		return stats.CoursesCompleted
	}
	return 0
}

// EvaluateAchievements re-checks unlock conditions against the user's
// aggregate statistics and returns the achievements that are newly
// satisfied. Entries already in earnedIDs are never re-awarded.
func EvaluateAchievements(stats domain.UserStats, catalog []domain.Achievement, earnedIDs map[string]struct{}) []domain.Achievement {
	var unlocked []domain.Achievement
	for _, a := range catalog {
		if _, done := earnedIDs[a.ID]; done {
			continue
		}
		if statistic(stats, a.Condition.Kind) >= a.Condition.Threshold {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// DefaultAchievements is the fixed catalog seeded when the achievements
// collection is empty at first use.
func DefaultAchievements() []domain.Achievement {
	return []domain.Achievement{
		{
			Name:        "First Steps",
			Description: "Complete your first test",
			Icon:        "star",
			Condition:   domain.Condition{Kind: domain.ConditionTestsCompleted, Threshold: 1},
			Points:      10,
		},
		{
			Name:        "Apprentice",
			Description: "Earn 100 points",
			Icon:        "target",
			Condition:   domain.Condition{Kind: domain.ConditionPoints, Threshold: 100},
			Points:      20,
		},
		{
			Name:        "Perfectionist",
			Description: "Score 100% on any test",
			Icon:        "award",
			Condition:   domain.Condition{Kind: domain.ConditionPerfectScore, Threshold: 1},
			Points:      50,
		},
		{
			Name:        "Specialist",
			Description: "Complete 5 courses",
			Icon:        "trophy",
			Condition:   domain.Condition{Kind: domain.ConditionCoursesCompleted, Threshold: 5},
			Points:      30,
		},
		{
			Name:        "Expert",
			Description: "Earn 500 points",
			Icon:        "zap",
			Condition:   domain.Condition{Kind: domain.ConditionPoints, Threshold: 500},
			Points:      50,
		},
		{
			Name:        "Marathoner",
			Description: "Complete 10 courses",
			Icon:        "trophy",
			Condition:   domain.Condition{Kind: domain.ConditionCoursesCompleted, Threshold: 10},
			Points:      100,
		},
	}
}
