package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"safety-training-service/internal/app"
	"safety-training-service/internal/domain"
	"safety-training-service/internal/infra/memory"
	"safety-training-service/internal/logger"
)

func TestStartAttemptSubstitutesFallback(t *testing.T) {
	ctx := context.Background()

	// No questions stored for the course.
	service, _ := newTestService(nil)
	session, err := service.StartAttempt(ctx, "course-1")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if got := len(session.Questions()); got != 5 {
		t.Fatalf("expected 5 fallback questions, got %d", got)
	}

	// Fetch failure is recovered the same way.
	service = app.NewAssessmentService(failingQuestions{}, memory.NewStore(), memory.NewStore(), memory.NewStore(), memory.NewStore(), logger.NewNop())
	session, err = service.StartAttempt(ctx, "course-1")
	if err != nil {
		t.Fatalf("start attempt after fetch failure: %v", err)
	}
	if got := len(session.Questions()); got != 5 {
		t.Fatalf("expected 5 fallback questions after failure, got %d", got)
	}
}

func TestCompleteAttemptPassingPipeline(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(map[string][]domain.Question{
		"course-1": beginnerSet(5),
	})
	store.SeedUser(domain.UserProgression{UserID: "user-12345678", Points: 80, Level: 1})

	session, err := service.StartAttempt(ctx, "course-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAll(session, "right")

	outcome, err := service.CompleteAttempt(ctx, domain.UserProgression{UserID: "user-12345678", Points: 80, Level: 1}, "course-1", session)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if outcome.SaveErr != nil {
		t.Fatalf("unexpected save error: %v", outcome.SaveErr)
	}

	if outcome.Result.Percentage != 100 || !outcome.Result.Passed {
		t.Fatalf("expected perfect pass, got %+v", outcome.Result)
	}
	if outcome.PointsEarned != 150 {
		t.Fatalf("expected 150 points earned, got %d", outcome.PointsEarned)
	}
	if outcome.Progression.Points != 230 || outcome.Progression.Level != 3 {
		t.Fatalf("expected 230 points at level 3, got %+v", outcome.Progression)
	}
	if !outcome.LeveledUp {
		t.Fatalf("expected level up from 1 to 3")
	}

	if outcome.Certificate == nil {
		t.Fatalf("expected certificate for passing attempt")
	}
	certs := store.Certificates()
	if len(certs) != 1 || certs[0].Number != outcome.Certificate.Number {
		t.Fatalf("certificate not persisted: %+v", certs)
	}

	// first-test, perfect-score, and both point thresholds up to 230.
	names := make(map[string]struct{})
	for _, a := range outcome.Unlocked {
		names[a.Name] = struct{}{}
	}
	for _, want := range []string{"First Steps", "Perfectionist", "Apprentice"} {
		if _, ok := names[want]; !ok {
			t.Fatalf("expected %q unlocked, got %v", want, names)
		}
	}
	if _, ok := names["Expert"]; ok {
		t.Fatalf("500-point achievement unlocked at 230 points")
	}
}

func TestCompleteAttemptFailingNoCertificate(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(map[string][]domain.Question{
		"course-1": mixedSet(),
	})
	store.SeedUser(domain.UserProgression{UserID: "u1", Points: 0, Level: 1})

	session, err := service.StartAttempt(ctx, "course-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// 3 of 5 correct: both beginners and one intermediate.
	answers := []string{"right", "right", "wrong", "right", "wrong"}
	for _, a := range answers {
		if err := session.SelectAnswer(a); err != nil {
			t.Fatalf("select: %v", err)
		}
		session.Advance()
	}

	outcome, err := service.CompleteAttempt(ctx, domain.UserProgression{UserID: "u1", Points: 0, Level: 1}, "course-1", session)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if outcome.Result.Percentage != 60 || outcome.Result.Passed {
		t.Fatalf("expected 60%% fail, got %+v", outcome.Result)
	}
	if outcome.PointsEarned != 40 {
		t.Fatalf("expected 40 points, got %d", outcome.PointsEarned)
	}
	if outcome.Certificate != nil {
		t.Fatalf("certificate issued for failed attempt")
	}
	if len(store.Certificates()) != 0 {
		t.Fatalf("certificate persisted for failed attempt")
	}
}

func TestCompleteAttemptAchievementsNotReawarded(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(map[string][]domain.Question{
		"course-1": beginnerSet(5),
	})
	store.SeedUser(domain.UserProgression{UserID: "u1", Points: 0, Level: 1})

	run := func() app.SubmitOutcome {
		session, err := service.StartAttempt(ctx, "course-1")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		answerAll(session, "right")
		user, err := store.UserProgression(ctx, "u1")
		if err != nil {
			t.Fatalf("load user: %v", err)
		}
		outcome, err := service.CompleteAttempt(ctx, user, "course-1", session)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		return outcome
	}

	first := run()
	second := run()

	for _, a := range second.Unlocked {
		for _, b := range first.Unlocked {
			if a.ID == b.ID {
				t.Fatalf("achievement %q awarded twice", a.Name)
			}
		}
	}

	seen := make(map[string]int)
	for _, ua := range store.UserAchievements() {
		seen[ua.AchievementID]++
		if seen[ua.AchievementID] > 1 {
			t.Fatalf("duplicate user achievement record for %s", ua.AchievementID)
		}
	}
}

func TestCompleteAttemptSurfacesPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		"course-1": beginnerSet(2),
	}), time.Minute)
	service := app.NewAssessmentService(questions, failingAttempts{}, store, store, store, logger.NewNop())

	session, err := service.StartAttempt(ctx, "course-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAll(session, "right")

	outcome, err := service.CompleteAttempt(ctx, domain.UserProgression{UserID: "u1", Level: 1}, "course-1", session)
	if err != nil {
		t.Fatalf("storage failure must not hide the outcome: %v", err)
	}
	if outcome.SaveErr == nil {
		t.Fatalf("expected SaveErr for failed insert")
	}
	var pe *domain.PersistenceError
	if !errors.As(outcome.SaveErr, &pe) {
		t.Fatalf("expected PersistenceError, got %T", outcome.SaveErr)
	}
	if outcome.Result.Score != 2 || !outcome.Result.Passed {
		t.Fatalf("score result lost on persistence failure: %+v", outcome.Result)
	}
	if len(store.Certificates()) != 0 {
		t.Fatalf("pipeline continued past failed attempt insert")
	}
}

func TestCompleteAttemptIncompleteFailsFast(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(map[string][]domain.Question{
		"course-1": beginnerSet(2),
	})
	store.SeedUser(domain.UserProgression{UserID: "u1", Level: 1})

	session, err := service.StartAttempt(ctx, "course-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = session.SelectAnswer("right") // second question left unanswered

	_, err = service.CompleteAttempt(ctx, domain.UserProgression{UserID: "u1", Level: 1}, "course-1", session)
	if !errors.Is(err, domain.ErrIncompleteAttempt) {
		t.Fatalf("expected ErrIncompleteAttempt, got %v", err)
	}

	stats, err := store.StatsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TestsCompleted != 0 {
		t.Fatalf("incomplete attempt persisted")
	}
}

func newTestService(questions map[string][]domain.Question) (*app.AssessmentService, *memory.Store) {
	store := memory.NewStore()
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), time.Minute)
	service := app.NewAssessmentService(repo, store, store, store, store, logger.NewNop())
	return service, store
}

func answerAll(session *app.AttemptSession, text string) {
	for range session.Questions() {
		_ = session.SelectAnswer(text)
		session.Advance()
	}
}

func beginnerSet(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID: string(rune('a' + i)), CourseID: "course-1",
			Text: "q", Type: domain.QuestionMultipleChoice, Difficulty: domain.DifficultyBeginner,
			Options: []domain.Option{{Text: "right", Correct: true}, {Text: "wrong"}},
		})
	}
	return questions
}

func mixedSet() []domain.Question {
	set := beginnerSet(3)
	for i := 0; i < 2; i++ {
		set = append(set, domain.Question{
			ID: string(rune('x' + i)), CourseID: "course-1",
			Text: "q", Type: domain.QuestionMultipleChoice, Difficulty: domain.DifficultyIntermediate,
			Options: []domain.Option{{Text: "right", Correct: true}, {Text: "wrong"}},
		})
	}
	return set
}

type failingQuestions struct{}

func (failingQuestions) QuestionsForCourse(context.Context, string) ([]domain.Question, error) {
	return nil, errors.New("backing store unavailable")
}

type failingAttempts struct{}

func (failingAttempts) InsertAttempt(context.Context, string, string, []domain.Question, domain.ScoreResult, int) (string, string, error) {
	return "", "", errors.New("insert failed")
}

func (failingAttempts) StatsForUser(context.Context, string) (domain.UserStats, error) {
	return domain.UserStats{}, errors.New("stats unavailable")
}
