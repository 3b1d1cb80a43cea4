package app

import (
	"safety-training-service/internal/domain"
)

// AttemptSession holds the in-memory state of one quiz attempt: the question
// sequence, the current position, and the answers recorded so far. It is
// owned by exactly one attempt and must not be shared between goroutines.
// Partial state is never persisted; abandoning the session just drops it.
type AttemptSession struct {
	questions []domain.Question
	index     int
	answers   map[int]string
	finalized bool
}

// NewAttemptSession starts a session over a non-empty ordered question
// sequence. Callers must substitute a fallback set before invoking with
// zero questions.
func NewAttemptSession(questions []domain.Question) (*AttemptSession, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptyQuestionSet
	}
	return &AttemptSession{
		questions: questions,
		answers:   make(map[int]string),
	}, nil
}

// Questions returns the question sequence the session was started with.
func (s *AttemptSession) Questions() []domain.Question {
	return s.questions
}

// Index returns the current position in the question sequence.
func (s *AttemptSession) Index() int {
	return s.index
}

// Current returns the question at the current position.
func (s *AttemptSession) Current() domain.Question {
	return s.questions[s.index]
}

// SelectAnswer records the answer for the current question. Re-selecting
// replaces the prior choice for that question only.
func (s *AttemptSession) SelectAnswer(optionText string) error {
	if s.finalized {
		return domain.ErrAttemptFinalized
	}
	s.answers[s.index] = optionText
	return nil
}

// Answer reports the recorded answer for the current question, if any.
func (s *AttemptSession) Answer() (string, bool) {
	text, ok := s.answers[s.index]
	return text, ok
}

// Advance moves to the next question; no-op at the last question.
func (s *AttemptSession) Advance() {
	if s.index < len(s.questions)-1 {
		s.index++
	}
}

// Retreat moves to the previous question; no-op at the first question.
func (s *AttemptSession) Retreat() {
	if s.index > 0 {
		s.index--
	}
}

// Answered returns how many questions have a recorded answer.
func (s *AttemptSession) Answered() int {
	return len(s.answers)
}

// IsComplete reports whether every question has a recorded answer.
func (s *AttemptSession) IsComplete() bool {
	return len(s.answers) == len(s.questions)
}

// Submit finalizes the session and hands the answer map to scoring. It
// fails with ErrIncompleteAttempt while any question is unanswered; after a
// successful submit the session rejects further mutation.
func (s *AttemptSession) Submit() (map[int]string, error) {
	if s.finalized {
		return nil, domain.ErrAttemptFinalized
	}
	if !s.IsComplete() {
		return nil, domain.ErrIncompleteAttempt
	}
	s.finalized = true
	return s.answers, nil
}
