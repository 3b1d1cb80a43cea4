package app

import (
	"safety-training-service/internal/domain"
)

// FallbackQuestions is the deterministic question set substituted when the
// backing store has no questions for a course, so an attempt always has
// material to run against. Fetch failures are recovered the same way and
// never surfaced to the caller.
func FallbackQuestions(courseID string) []domain.Question {
	return []domain.Question{
		{
			ID:       "1",
			CourseID: courseID,
			Text:     "What is the primary rule of workplace safety?",
			Type:     domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "Use personal protective equipment", Correct: true},
				{Text: "Finish the job as fast as possible"},
				{Text: "Ignore the instructions"},
				{Text: "Make decisions on your own"},
			},
			Difficulty: domain.DifficultyBeginner,
		},
		{
			ID:       "2",
			CourseID: courseID,
			Text:     "What must be done before operating equipment?",
			Type:     domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "Check that it works and its guards are in place", Correct: true},
				{Text: "Switch it on immediately"},
				{Text: "Read the manual after switching it on"},
				{Text: "Skip the inspection"},
			},
			Difficulty: domain.DifficultyBeginner,
		},
		{
			ID:       "3",
			CourseID: courseID,
			Text:     "Which actions are prohibited on the work site?",
			Type:     domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "Working while exhausted or under the influence of alcohol", Correct: true},
				{Text: "Wearing protective clothing"},
				{Text: "Following the instructions"},
				{Text: "Calling a supervisor when something breaks"},
			},
			Difficulty: domain.DifficultyIntermediate,
		},
		{
			ID:       "4",
			CourseID: courseID,
			Text:     "What does personal protective equipment include?",
			Type:     domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "Hard hat, gloves, safety glasses, work clothing", Correct: true},
				{Text: "Gloves only"},
				{Text: "A hard hat only"},
				{Text: "Regular clothing"},
			},
			Difficulty: domain.DifficultyBeginner,
		},
		{
			ID:       "5",
			CourseID: courseID,
			Text:     "How often must safety training be refreshed?",
			Type:     domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "Regularly, per the company schedule", Correct: true},
				{Text: "Once, when hired"},
				{Text: "Whenever the employee feels like it"},
				{Text: "Training is optional"},
			},
			Difficulty: domain.DifficultyIntermediate,
		},
	}
}
