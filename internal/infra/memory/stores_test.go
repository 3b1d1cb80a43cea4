package memory

import (
	"context"
	"testing"
	"time"

	"safety-training-service/internal/domain"
)

func TestStoreStatsFromHistory(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.SeedUser(domain.UserProgression{UserID: "u1", Points: 120, Level: 2})

	insert := func(courseID string, percentage int, passed bool) {
		t.Helper()
		result := domain.ScoreResult{Score: 1, Total: 1, Percentage: percentage, Passed: passed}
		if _, _, err := store.InsertAttempt(ctx, "u1", courseID, nil, result, 10); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}
	insert("course-1", 100, true)
	insert("course-1", 80, true) // same course passed twice counts once
	insert("course-2", 60, false)

	stats, err := store.StatsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TestsCompleted != 3 {
		t.Fatalf("tests completed = %d, want 3", stats.TestsCompleted)
	}
	if stats.PerfectScores != 1 {
		t.Fatalf("perfect scores = %d, want 1", stats.PerfectScores)
	}
	if stats.CoursesCompleted != 1 {
		t.Fatalf("courses completed = %d, want 1", stats.CoursesCompleted)
	}
	if stats.Points != 120 {
		t.Fatalf("points = %d, want 120", stats.Points)
	}
}

func TestStoreAddPointsRecomputesLevel(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.SeedUser(domain.UserProgression{UserID: "u1", Points: 80, Level: 1})

	p, err := store.AddPoints(ctx, "u1", 40)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if p.Points != 120 || p.Level != 2 {
		t.Fatalf("expected 120 points at level 2, got %+v", p)
	}

	if _, err := store.AddPoints(ctx, "missing", 10); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStoreUserAchievementsUnique(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ua := domain.UserAchievement{UserID: "u1", AchievementID: "a1", EarnedAt: time.Now()}
	if err := store.InsertUserAchievement(ctx, ua); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.InsertUserAchievement(ctx, ua); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	if got := len(store.UserAchievements()); got != 1 {
		t.Fatalf("expected 1 record for the pair, got %d", got)
	}

	earned, err := store.EarnedIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("earned ids: %v", err)
	}
	if _, ok := earned["a1"]; !ok || len(earned) != 1 {
		t.Fatalf("unexpected earned set: %v", earned)
	}
}

func TestStoreCatalogSeedsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	defaults := []domain.Achievement{
		{Name: "first", Condition: domain.Condition{Kind: domain.ConditionTestsCompleted, Threshold: 1}},
	}

	catalog, err := store.Catalog(ctx, defaults)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].ID == "" {
		t.Fatalf("expected seeded catalog with ids, got %+v", catalog)
	}

	again, err := store.Catalog(ctx, defaults)
	if err != nil {
		t.Fatalf("catalog 2: %v", err)
	}
	if len(again) != 1 || again[0].ID != catalog[0].ID {
		t.Fatalf("catalog reseeded: %+v vs %+v", again, catalog)
	}
}
