package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"safety-training-service/internal/domain"
)

// Store is an in-memory implementation of the engine's persistence
// boundary. It backs the server when no Postgres is configured and keeps
// the engine tests free of external dependencies.
type Store struct {
	mu           sync.Mutex
	users        map[string]domain.UserProgression
	attempts     []attemptRecord
	certificates []domain.Certificate
	catalog      []domain.Achievement
	earned       []domain.UserAchievement
}

type attemptRecord struct {
	testID       string
	resultID     string
	userID       string
	courseID     string
	result       domain.ScoreResult
	pointsEarned int
}

func NewStore() *Store {
	return &Store{users: make(map[string]domain.UserProgression)}
}

// SeedUser registers a progression snapshot so AddPoints has a row to
// update.
func (s *Store) SeedUser(p domain.UserProgression) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.UserID] = p
}

func (s *Store) InsertAttempt(_ context.Context, userID, courseID string, _ []domain.Question, result domain.ScoreResult, pointsEarned int) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := attemptRecord{
		testID:       uuid.NewString(),
		resultID:     uuid.NewString(),
		userID:       userID,
		courseID:     courseID,
		result:       result,
		pointsEarned: pointsEarned,
	}
	s.attempts = append(s.attempts, rec)
	return rec.testID, rec.resultID, nil
}

func (s *Store) StatsForUser(_ context.Context, userID string) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.UserStats{Points: s.users[userID].Points}
	passedCourses := make(map[string]struct{})
	for _, rec := range s.attempts {
		if rec.userID != userID {
			continue
		}
		stats.TestsCompleted++
		if rec.result.Percentage == 100 {
			stats.PerfectScores++
		}
		if rec.result.Passed {
			passedCourses[rec.courseID] = struct{}{}
		}
	}
	stats.CoursesCompleted = len(passedCourses)
	return stats, nil
}

func (s *Store) InsertCertificate(_ context.Context, cert domain.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certificates = append(s.certificates, cert)
	return nil
}

// Certificates returns a copy of the issued certificates. Test helper.
func (s *Store) Certificates() []domain.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Certificate, len(s.certificates))
	copy(out, s.certificates)
	return out
}

// UserProgression returns the current snapshot for a user, provisioning a
// fresh level-1 record on first contact (mirrors upstream identity
// creating users lazily).
func (s *Store) UserProgression(_ context.Context, userID string) (domain.UserProgression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		p = domain.UserProgression{UserID: userID, Points: 0, Level: 1}
		s.users[userID] = p
	}
	return p, nil
}

func (s *Store) AddPoints(_ context.Context, userID string, delta int) (domain.UserProgression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return domain.UserProgression{}, domain.ErrUserNotFound
	}
	p.Points += delta
	p.Level = p.Points/100 + 1
	s.users[userID] = p
	return p, nil
}

func (s *Store) Catalog(_ context.Context, defaults []domain.Achievement) ([]domain.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.catalog) == 0 {
		for i, a := range defaults {
			a.ID = strconv.Itoa(i + 1)
			s.catalog = append(s.catalog, a)
		}
	}
	out := make([]domain.Achievement, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

func (s *Store) EarnedIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]struct{})
	for _, ua := range s.earned {
		if ua.UserID == userID {
			ids[ua.AchievementID] = struct{}{}
		}
	}
	return ids, nil
}

func (s *Store) InsertUserAchievement(_ context.Context, ua domain.UserAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.earned {
		if existing.UserID == ua.UserID && existing.AchievementID == ua.AchievementID {
			return nil
		}
	}
	s.earned = append(s.earned, ua)
	return nil
}

// UserAchievements returns a copy of the recorded unlocks. Test helper.
func (s *Store) UserAchievements() []domain.UserAchievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAchievement, len(s.earned))
	copy(out, s.earned)
	return out
}
