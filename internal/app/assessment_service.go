package app

import (
	"context"
	"time"

	"safety-training-service/internal/domain"
	"safety-training-service/internal/logger"
)

// QuestionRepository loads assessable questions (from cache/backing store).
type QuestionRepository interface {
	QuestionsForCourse(ctx context.Context, courseID string) ([]domain.Question, error)
}

// AttemptStore persists finalized attempts and answers aggregate queries
// over the authoritative attempt history.
type AttemptStore interface {
	// InsertAttempt records the attempt (with its question snapshot) and
	// its result, returning the new test and test-result identifiers.
	InsertAttempt(ctx context.Context, userID, courseID string, questions []domain.Question, result domain.ScoreResult, pointsEarned int) (testID, resultID string, err error)
	// StatsForUser recomputes aggregate statistics from stored history.
	StatsForUser(ctx context.Context, userID string) (domain.UserStats, error)
}

// CertificateStore persists issued certificates.
type CertificateStore interface {
	InsertCertificate(ctx context.Context, cert domain.Certificate) error
}

// UserStore owns the cumulative points and derived level. AddPoints must be
// atomic at the storage boundary so concurrent submissions cannot lose an
// increment.
type UserStore interface {
	AddPoints(ctx context.Context, userID string, delta int) (domain.UserProgression, error)
}

// AchievementStore holds the static catalog and per-user unlocks.
type AchievementStore interface {
	// Catalog returns the achievement catalog, seeding the given defaults
	// first when it is empty.
	Catalog(ctx context.Context, defaults []domain.Achievement) ([]domain.Achievement, error)
	EarnedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	InsertUserAchievement(ctx context.Context, ua domain.UserAchievement) error
}

// SubmitOutcome is everything a completed attempt produced. SaveErr carries
// the first persistence failure of the pipeline; the score is valid and
// surfaced to the user even then, though stored state may lag it.
type SubmitOutcome struct {
	Result       domain.ScoreResult
	PointsEarned int
	Progression  domain.UserProgression
	LeveledUp    bool
	Certificate  *domain.Certificate
	Unlocked     []domain.Achievement
	SaveErr      error
}

// AssessmentService drives a quiz attempt from question supply through
// scoring, point accrual, progression, certificate issuance, and
// achievement unlocking.
type AssessmentService struct {
	questions    QuestionRepository
	attempts     AttemptStore
	certificates CertificateStore
	users        UserStore
	achievements AchievementStore
	issuer       *CertificateIssuer
	log          *logger.Logger
	now          func() time.Time
}

func NewAssessmentService(
	questions QuestionRepository,
	attempts AttemptStore,
	certificates CertificateStore,
	users UserStore,
	achievements AchievementStore,
	log *logger.Logger,
) *AssessmentService {
	return &AssessmentService{
		questions:    questions,
		attempts:     attempts,
		certificates: certificates,
		users:        users,
		achievements: achievements,
		issuer:       NewCertificateIssuer(),
		log:          log,
		now:          time.Now,
	}
}

// WithClock overrides the service clock. Test-only.
func (s *AssessmentService) WithClock(now func() time.Time) *AssessmentService {
	s.now = now
	s.issuer = NewCertificateIssuerWithClock(now)
	return s
}

// StartAttempt fetches the question set for a course and opens a session
// over it. A fetch failure or an empty result is recovered locally by
// substituting the deterministic fallback set, never surfaced as an error.
func (s *AssessmentService) StartAttempt(ctx context.Context, courseID string) (*AttemptSession, error) {
	questions, err := s.questions.QuestionsForCourse(ctx, courseID)
	if err != nil {
		s.log.Warn("question fetch failed, using fallback set", "course_id", courseID, "error", err)
		questions = nil
	}
	if len(questions) == 0 {
		questions = FallbackQuestions(courseID)
	}
	return NewAttemptSession(questions)
}

// CompleteAttempt submits the session and runs the post-scoring pipeline:
// persist attempt and result, issue a certificate when passed, merge the
// earned points into the user's progression, and evaluate achievements
// against the updated aggregates.
//
// Contract violations (incomplete attempt, negative award) fail before any
// write. A storage failure after scoring stops the remaining writes and is
// reported on SubmitOutcome.SaveErr while the computed result is still
// returned; nothing is retried.
func (s *AssessmentService) CompleteAttempt(ctx context.Context, user domain.UserProgression, courseID string, session *AttemptSession) (SubmitOutcome, error) {
	answers, err := session.Submit()
	if err != nil {
		return SubmitOutcome{}, err
	}

	result, err := Score(session.Questions(), answers)
	if err != nil {
		return SubmitOutcome{}, err
	}

	pointsEarned := AwardPoints(session.Questions(), result)
	projected, leveledUp, err := ApplyProgression(user, pointsEarned)
	if err != nil {
		return SubmitOutcome{}, err
	}

	outcome := SubmitOutcome{
		Result:       result,
		PointsEarned: pointsEarned,
		Progression:  projected,
		LeveledUp:    leveledUp,
	}

	_, resultID, err := s.attempts.InsertAttempt(ctx, user.UserID, courseID, session.Questions(), result, pointsEarned)
	if err != nil {
		outcome.SaveErr = &domain.PersistenceError{Op: "insert attempt", Err: err}
		return outcome, nil
	}

	if cert := s.issuer.IssueIfEligible(result, user.UserID, courseID, resultID); cert != nil {
		if err := s.certificates.InsertCertificate(ctx, *cert); err != nil {
			outcome.SaveErr = &domain.PersistenceError{Op: "insert certificate", Err: err}
			return outcome, nil
		}
		outcome.Certificate = cert
		s.log.Info("certificate issued", "user_id", user.UserID, "course_id", courseID, "number", cert.Number)
	}

	progression, err := s.users.AddPoints(ctx, user.UserID, pointsEarned)
	if err != nil {
		outcome.SaveErr = &domain.PersistenceError{Op: "update progression", Err: err}
		return outcome, nil
	}
	outcome.Progression = progression
	outcome.LeveledUp = progression.Level > user.Level

	unlocked, err := s.evaluateAchievements(ctx, user.UserID, progression.Points)
	if err != nil {
		outcome.SaveErr = err
		return outcome, nil
	}
	outcome.Unlocked = unlocked
	return outcome, nil
}

// evaluateAchievements seeds the catalog when empty, recomputes stats from
// stored history, and records the newly satisfied achievements.
func (s *AssessmentService) evaluateAchievements(ctx context.Context, userID string, points int) ([]domain.Achievement, error) {
	catalog, err := s.achievements.Catalog(ctx, DefaultAchievements())
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load achievement catalog", Err: err}
	}

	stats, err := s.attempts.StatsForUser(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "recompute user stats", Err: err}
	}
	stats.Points = points

	earned, err := s.achievements.EarnedIDs(ctx, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load earned achievements", Err: err}
	}

	unlocked := EvaluateAchievements(stats, catalog, earned)
	earnedAt := s.now()
	for _, a := range unlocked {
		err := s.achievements.InsertUserAchievement(ctx, domain.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			EarnedAt:      earnedAt,
		})
		if err != nil {
			return nil, &domain.PersistenceError{Op: "insert user achievement", Err: err}
		}
		s.log.Info("achievement unlocked", "user_id", userID, "achievement", a.Name)
	}
	return unlocked, nil
}
