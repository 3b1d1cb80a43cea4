package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"safety-training-service/internal/app"
	"safety-training-service/internal/domain"
)

// TestRecord is one submitted attempt with its question snapshot.
type TestRecord struct {
	bun.BaseModel `bun:"table:tests"`

	ID        string          `bun:"id,pk"`
	CourseID  string          `bun:"course_id,notnull"`
	UserID    string          `bun:"user_id,notnull"`
	Questions json.RawMessage `bun:"questions,type:jsonb"`
	Status    string          `bun:"status,notnull"`
	CreatedAt time.Time       `bun:"created_at,notnull"`
}

// TestResultRecord is the graded outcome of an attempt.
type TestResultRecord struct {
	bun.BaseModel `bun:"table:test_results"`

	ID             string          `bun:"id,pk"`
	TestID         string          `bun:"test_id,notnull"`
	UserID         string          `bun:"user_id,notnull"`
	CourseID       string          `bun:"course_id,notnull"`
	Score          int             `bun:"score,notnull"`
	TotalQuestions int             `bun:"total_questions,notnull"`
	Percentage     int             `bun:"percentage,notnull"`
	Answers        json.RawMessage `bun:"answers,type:jsonb"`
	Passed         bool            `bun:"passed,notnull"`
	PointsEarned   int             `bun:"points_earned,notnull"`
	CompletedAt    time.Time       `bun:"completed_at,notnull"`
}

// CertificateRecord mirrors domain.Certificate.
type CertificateRecord struct {
	bun.BaseModel `bun:"table:certificates"`

	ID           string    `bun:"id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	CourseID     string    `bun:"course_id,notnull"`
	TestResultID string    `bun:"test_result_id,notnull"`
	Number       string    `bun:"certificate_number,notnull,unique"`
	IssuedAt     time.Time `bun:"issued_at,notnull"`
}

// AchievementRecord is one catalog entry; the condition is kept as JSONB
// and validated against the closed kind set on load.
type AchievementRecord struct {
	bun.BaseModel `bun:"table:achievements"`

	ID          string          `bun:"id,pk"`
	Name        string          `bun:"name,notnull"`
	Description string          `bun:"description"`
	Icon        string          `bun:"icon"`
	Condition   json.RawMessage `bun:"condition,type:jsonb,notnull"`
	Points      int             `bun:"points,notnull"`
}

// UserAchievementRecord joins users to unlocked achievements; unique per
// (user_id, achievement_id).
type UserAchievementRecord struct {
	bun.BaseModel `bun:"table:user_achievements"`

	ID            string    `bun:"id,pk"`
	UserID        string    `bun:"user_id,notnull"`
	AchievementID string    `bun:"achievement_id,notnull"`
	EarnedAt      time.Time `bun:"earned_at,notnull"`
}

// UserRecord carries the progression fields the engine updates.
type UserRecord struct {
	bun.BaseModel `bun:"table:users"`

	ID     string `bun:"id,pk"`
	Points int    `bun:"points,notnull"`
	Level  int    `bun:"level,notnull"`
}

// Store implements the engine's persistence boundary on Postgres via bun.
type Store struct {
	db    *bun.DB
	clock func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

// NewStoreWithClock allows deterministic timestamps in tests.
func NewStoreWithClock(db *bun.DB, now func() time.Time) *Store {
	return &Store{db: db, clock: now}
}

// InsertAttempt writes the tests row (with its question snapshot) and the
// test_results row in one transaction, so history queries never observe an
// attempt without its result.
func (s *Store) InsertAttempt(ctx context.Context, userID, courseID string, questions []domain.Question, result domain.ScoreResult, pointsEarned int) (string, string, error) {
	snapshot, err := json.Marshal(questions)
	if err != nil {
		return "", "", fmt.Errorf("marshal question snapshot: %w", err)
	}
	trail, err := json.Marshal(result.Trail)
	if err != nil {
		return "", "", fmt.Errorf("marshal answer trail: %w", err)
	}

	now := s.clock()
	test := &TestRecord{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		UserID:    userID,
		Questions: snapshot,
		Status:    "completed",
		CreatedAt: now,
	}
	res := &TestResultRecord{
		ID:             uuid.NewString(),
		TestID:         test.ID,
		UserID:         userID,
		CourseID:       courseID,
		Score:          result.Score,
		TotalQuestions: result.Total,
		Percentage:     result.Percentage,
		Answers:        trail,
		Passed:         result.Passed,
		PointsEarned:   pointsEarned,
		CompletedAt:    now,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(test).Exec(ctx); err != nil {
			return fmt.Errorf("insert test: %w", err)
		}
		if _, err := tx.NewInsert().Model(res).Exec(ctx); err != nil {
			return fmt.Errorf("insert test result: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return test.ID, res.ID, nil
}

func (s *Store) StatsForUser(ctx context.Context, userID string) (domain.UserStats, error) {
	var stats domain.UserStats

	completed, err := s.db.NewSelect().Model((*TestResultRecord)(nil)).
		Where("user_id = ?", userID).Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count attempts: %w", err)
	}
	stats.TestsCompleted = completed

	perfect, err := s.db.NewSelect().Model((*TestResultRecord)(nil)).
		Where("user_id = ? AND percentage = 100", userID).Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count perfect scores: %w", err)
	}
	stats.PerfectScores = perfect

	err = s.db.NewSelect().Model((*TestResultRecord)(nil)).
		ColumnExpr("count(DISTINCT course_id)").
		Where("user_id = ? AND passed", userID).
		Scan(ctx, &stats.CoursesCompleted)
	if err != nil {
		return stats, fmt.Errorf("count completed courses: %w", err)
	}

	var user UserRecord
	err = s.db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("load user points: %w", err)
	}
	stats.Points = user.Points
	return stats, nil
}

func (s *Store) InsertCertificate(ctx context.Context, cert domain.Certificate) error {
	rec := &CertificateRecord{
		ID:           cert.ID,
		UserID:       cert.UserID,
		CourseID:     cert.CourseID,
		TestResultID: cert.TestResultID,
		Number:       cert.Number,
		IssuedAt:     cert.IssuedAt,
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// UserProgression returns the current snapshot for a user.
func (s *Store) UserProgression(ctx context.Context, userID string) (domain.UserProgression, error) {
	var rec UserRecord
	err := s.db.NewSelect().Model(&rec).Where("id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgression{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProgression{}, fmt.Errorf("load user: %w", err)
	}
	return domain.UserProgression{UserID: rec.ID, Points: rec.Points, Level: rec.Level}, nil
}

// AddPoints merges earned points into the user's total and recomputes the
// level in a single atomic UPDATE, so concurrent submissions cannot lose
// an increment.
func (s *Store) AddPoints(ctx context.Context, userID string, delta int) (domain.UserProgression, error) {
	var rec UserRecord
	err := s.db.NewUpdate().Model(&rec).
		Set("points = points + ?", delta).
		Set("level = floor((points + ?) / 100)::int + 1", delta).
		Where("id = ?", userID).
		Returning("id, points, level").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProgression{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProgression{}, fmt.Errorf("update progression: %w", err)
	}
	return domain.UserProgression{UserID: rec.ID, Points: rec.Points, Level: rec.Level}, nil
}

func (s *Store) Catalog(ctx context.Context, defaults []domain.Achievement) ([]domain.Achievement, error) {
	count, err := s.db.NewSelect().Model((*AchievementRecord)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count achievements: %w", err)
	}
	if count == 0 {
		if err := s.seedAchievements(ctx, defaults); err != nil {
			return nil, err
		}
	}

	var recs []AchievementRecord
	if err := s.db.NewSelect().Model(&recs).Order("name").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load achievements: %w", err)
	}

	catalog := make([]domain.Achievement, 0, len(recs))
	for _, rec := range recs {
		var raw struct {
			Type  string `json:"type"`
			Value int    `json:"value"`
		}
		if err := json.Unmarshal(rec.Condition, &raw); err != nil {
			return nil, fmt.Errorf("decode condition for %s: %w", rec.Name, err)
		}
		cond, err := app.ParseCondition(raw.Type, raw.Value)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", rec.Name, err)
		}
		catalog = append(catalog, domain.Achievement{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Icon:        rec.Icon,
			Condition:   cond,
			Points:      rec.Points,
		})
	}
	return catalog, nil
}

func (s *Store) seedAchievements(ctx context.Context, defaults []domain.Achievement) error {
	recs := make([]AchievementRecord, 0, len(defaults))
	for _, a := range defaults {
		cond, err := json.Marshal(a.Condition)
		if err != nil {
			return fmt.Errorf("marshal condition: %w", err)
		}
		recs = append(recs, AchievementRecord{
			ID:          uuid.NewString(),
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			Condition:   cond,
			Points:      a.Points,
		})
	}
	if _, err := s.db.NewInsert().Model(&recs).Exec(ctx); err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	return nil
}

func (s *Store) EarnedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.NewSelect().Model((*UserAchievementRecord)(nil)).
		Column("achievement_id").
		Where("user_id = ?", userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}
	earned := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		earned[id] = struct{}{}
	}
	return earned, nil
}

// InsertUserAchievement records an unlock; the conflict clause keeps the
// (user, achievement) pair unique even if two pipelines race.
func (s *Store) InsertUserAchievement(ctx context.Context, ua domain.UserAchievement) error {
	rec := &UserAchievementRecord{
		ID:            uuid.NewString(),
		UserID:        ua.UserID,
		AchievementID: ua.AchievementID,
		EarnedAt:      ua.EarnedAt,
	}
	_, err := s.db.NewInsert().Model(rec).
		On("CONFLICT (user_id, achievement_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert user achievement: %w", err)
	}
	return nil
}

// EnsureUser creates the user's progression row if it does not exist yet.
// Used by the seed command and integration tests.
func (s *Store) EnsureUser(ctx context.Context, userID string, points int) error {
	rec := &UserRecord{ID: userID, Points: points, Level: points/100 + 1}
	_, err := s.db.NewInsert().Model(rec).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// SeedQuestions inserts course questions. Used by the seed command and
// integration tests.
func (s *Store) SeedQuestions(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		_, err = s.db.NewInsert().
			Model(&map[string]interface{}{
				"id":            q.ID,
				"course_id":     q.CourseID,
				"question_text": q.Text,
				"question_type": string(q.Type),
				"options":       string(opts),
				"difficulty":    string(q.Difficulty),
			}).
			TableExpr("questions").
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	return nil
}
