package domain

import "time"

// Difficulty is the tier a question belongs to; it drives point weighting.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// QuestionType distinguishes auto-gradable questions from open-ended ones.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionOpen           QuestionType = "open"
)

// Option represents a possible answer for a multiple-choice question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"is_correct"`
}

// Question models one assessable question. Immutable once fetched into a session.
type Question struct {
	ID         string       `json:"id"`
	CourseID   string       `json:"course_id"`
	Text       string       `json:"question_text"`
	Type       QuestionType `json:"question_type"`
	Options    []Option     `json:"options"`
	Difficulty Difficulty   `json:"difficulty"`
}

// AnswerReview is one entry of the per-question correctness trail, kept in
// question order regardless of the order answers were recorded.
type AnswerReview struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"is_correct"`
}

// ScoreResult is the immutable outcome of grading one completed attempt.
type ScoreResult struct {
	Score      int            `json:"score"`
	Total      int            `json:"total"`
	Percentage int            `json:"percentage"`
	Passed     bool           `json:"passed"`
	Trail      []AnswerReview `json:"answers"`
}

// UserProgression is a snapshot of a user's cumulative points and derived
// level. Level is always floor(points/100)+1, recomputed on every update.
type UserProgression struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
}

// Certificate is minted when an attempt passes. At most one per attempt;
// the number is never reused or regenerated.
type Certificate struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CourseID     string    `json:"course_id"`
	TestResultID string    `json:"test_result_id"`
	Number       string    `json:"certificate_number"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ConditionKind enumerates the closed set of achievement unlock predicates.
type ConditionKind string

const (
	ConditionTestsCompleted   ConditionKind = "tests_completed"
	ConditionPoints           ConditionKind = "points"
	ConditionPerfectScore     ConditionKind = "perfect_score"
	ConditionCoursesCompleted ConditionKind = "courses_completed"
)

// Condition is an unlock predicate: the statistic named by Kind must reach
// Threshold for the achievement to unlock.
type Condition struct {
	Kind      ConditionKind `json:"type"`
	Threshold int           `json:"value"`
}

// Achievement is a static catalog entry.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Condition   Condition `json:"condition"`
	Points      int       `json:"points"`
}

// UserAchievement records the first time a user satisfied an achievement.
// Unique per (user, achievement) pair.
type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// UserStats are aggregate statistics recomputed from the authoritative
// attempt history, never from session-local state.
type UserStats struct {
	TestsCompleted   int `json:"tests_completed"`
	Points           int `json:"points"`
	PerfectScores    int `json:"perfect_score"`
	CoursesCompleted int `json:"courses_completed"`
}
