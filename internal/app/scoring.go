package app

import (
	"math"

	"safety-training-service/internal/domain"
)

// passThreshold is the minimum percentage for a passing attempt.
const passThreshold = 75

// Score grades a completed attempt against its question set. Correctness
// for a multiple-choice question requires the recorded answer text to equal
// the text of the single option flagged correct; open questions and
// questions without a flagged option never score (auto-grading open answers
// is unsupported). The trail preserves question order.
func Score(questions []domain.Question, answers map[int]string) (domain.ScoreResult, error) {
	total := len(questions)
	if total == 0 {
		return domain.ScoreResult{}, domain.ErrNoQuestions
	}

	score := 0
	trail := make([]domain.AnswerReview, 0, total)
	for i, q := range questions {
		answer := answers[i]
		correct := false
		if q.Type == domain.QuestionMultipleChoice {
			if want, ok := correctOption(q); ok {
				correct = answer == want
			}
		}
		if correct {
			score++
		}
		trail = append(trail, domain.AnswerReview{
			Question: q.Text,
			Answer:   answer,
			Correct:  correct,
		})
	}

	percentage := int(math.Round(float64(score) / float64(total) * 100))
	return domain.ScoreResult{
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Passed:     percentage >= passThreshold,
		Trail:      trail,
	}, nil
}

// correctOption returns the text of the option flagged correct, if any.
func correctOption(q domain.Question) (string, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.Text, true
		}
	}
	return "", false
}
