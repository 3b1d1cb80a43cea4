package app

import (
	"safety-training-service/internal/domain"
)

const (
	passBonus    = 50
	perfectBonus = 50
)

// difficultyWeights maps a question's tier to the points awarded per
// correct answer.
var difficultyWeights = map[domain.Difficulty]int{
	domain.DifficultyBeginner:     10,
	domain.DifficultyIntermediate: 20,
	domain.DifficultyAdvanced:     30,
}

// AwardPoints converts a correctness trail into the points earned for the
// attempt: the difficulty weight of each correct answer, plus a flat pass
// bonus when the attempt passed and a further perfect bonus at 100%. The
// bonuses are additive, not exclusive.
func AwardPoints(questions []domain.Question, result domain.ScoreResult) int {
	earned := 0
	for i, q := range questions {
		if i >= len(result.Trail) || !result.Trail[i].Correct {
			continue
		}
		weight, ok := difficultyWeights[q.Difficulty]
		if !ok {
			weight = difficultyWeights[domain.DifficultyBeginner]
		}
		earned += weight
	}

	if result.Passed {
		earned += passBonus
		if result.Percentage == 100 {
			earned += perfectBonus
		}
	}
	return earned
}
