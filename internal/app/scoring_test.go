package app

import (
	"errors"
	"testing"

	"safety-training-service/internal/domain"
)

func TestScorePerfectAttempt(t *testing.T) {
	questions := beginnerQuestions(5)
	answers := map[int]string{0: "right", 1: "right", 2: "right", 3: "right", 4: "right"}

	result, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 5 || result.Total != 5 {
		t.Fatalf("expected 5/5, got %d/%d", result.Score, result.Total)
	}
	if result.Percentage != 100 || !result.Passed {
		t.Fatalf("expected 100%% pass, got %d%% passed=%v", result.Percentage, result.Passed)
	}
}

func TestScoreFailedAttempt(t *testing.T) {
	questions := mixedQuestions()
	// 2 beginner and 1 intermediate correct out of 5.
	answers := map[int]string{0: "right", 1: "right", 2: "wrong", 3: "right", 4: "wrong"}

	result, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 3 {
		t.Fatalf("expected score 3, got %d", result.Score)
	}
	if result.Percentage != 60 {
		t.Fatalf("expected 60%%, got %d%%", result.Percentage)
	}
	if result.Passed {
		t.Fatalf("60%% must not pass")
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	// 5 of 8 correct is 62.5%, which rounds to 63.
	questions := beginnerQuestions(8)
	answers := map[int]string{0: "right", 1: "right", 2: "right", 3: "right", 4: "right", 5: "x", 6: "x", 7: "x"}

	result, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Percentage != 63 {
		t.Fatalf("expected 63%%, got %d%%", result.Percentage)
	}
}

func TestScorePassBoundary(t *testing.T) {
	// 3 of 4 correct is exactly 75%: a pass.
	questions := beginnerQuestions(4)
	answers := map[int]string{0: "right", 1: "right", 2: "right", 3: "x"}

	result, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Percentage != 75 || !result.Passed {
		t.Fatalf("expected 75%% pass, got %d%% passed=%v", result.Percentage, result.Passed)
	}
}

func TestScoreOpenQuestionsNeverCorrect(t *testing.T) {
	questions := []domain.Question{
		{Text: "explain", Type: domain.QuestionOpen, Difficulty: domain.DifficultyAdvanced},
		{
			Text: "pick", Type: domain.QuestionMultipleChoice, Difficulty: domain.DifficultyBeginner,
			// No option flagged correct.
			Options: []domain.Option{{Text: "a"}, {Text: "b"}},
		},
	}
	answers := map[int]string{0: "a thorough explanation", 1: "a"}

	result, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("expected no credit, got score %d", result.Score)
	}
}

func TestScoreTrailPreservesQuestionOrder(t *testing.T) {
	questions := beginnerQuestions(3)
	questions[0].Text = "first"
	questions[1].Text = "second"
	questions[2].Text = "third"
	// Answers recorded out of order.
	answers := map[int]string{2: "right", 0: "wrong", 1: "right"}

	result, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, review := range result.Trail {
		if review.Question != want[i] {
			t.Fatalf("trail[%d] = %q, want %q", i, review.Question, want[i])
		}
	}
	if result.Trail[0].Correct || !result.Trail[1].Correct || !result.Trail[2].Correct {
		t.Fatalf("unexpected correctness trail: %+v", result.Trail)
	}
}

func TestScoreRejectsEmptySet(t *testing.T) {
	if _, err := Score(nil, nil); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func beginnerQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			Text: "q", Type: domain.QuestionMultipleChoice, Difficulty: domain.DifficultyBeginner,
			Options: []domain.Option{{Text: "right", Correct: true}, {Text: "wrong"}},
		})
	}
	return questions
}

func mixedQuestions() []domain.Question {
	difficulties := []domain.Difficulty{
		domain.DifficultyBeginner,
		domain.DifficultyBeginner,
		domain.DifficultyBeginner,
		domain.DifficultyIntermediate,
		domain.DifficultyIntermediate,
	}
	questions := make([]domain.Question, 0, len(difficulties))
	for _, d := range difficulties {
		questions = append(questions, domain.Question{
			Text: "q", Type: domain.QuestionMultipleChoice, Difficulty: d,
			Options: []domain.Option{{Text: "right", Correct: true}, {Text: "wrong"}},
		})
	}
	return questions
}
