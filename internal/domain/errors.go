package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestionSet is returned when a session is started with zero questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrIncompleteAttempt is returned when an attempt is submitted before every question is answered.
	ErrIncompleteAttempt = errors.New("attempt has unanswered questions")
	// ErrAttemptFinalized is returned when a submitted session is mutated.
	ErrAttemptFinalized = errors.New("attempt already submitted")
	// ErrNoQuestions is returned by the scorer when there is nothing to grade.
	ErrNoQuestions = errors.New("no questions to score")
	// ErrInvalidAward is returned when a negative point award reaches the ledger.
	ErrInvalidAward = errors.New("point award must not be negative")
	// ErrUnknownCondition is returned when an achievement carries an unrecognized condition kind.
	ErrUnknownCondition = errors.New("unknown achievement condition kind")
	// ErrUserNotFound indicates the progression update targeted a missing user.
	ErrUserNotFound = errors.New("user not found")
)

// PersistenceError wraps any storage-boundary failure from the post-scoring
// pipeline. The computed ScoreResult is still surfaced to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
