package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/akarsten/habitquest/internal/levels"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/pkg/logger"
)

// Mock repositories for testing
type mockAchievementRepository struct {
	records map[uint]map[int]bool
}

func newMockAchievementRepository() *mockAchievementRepository {
	return &mockAchievementRepository{records: make(map[uint]map[int]bool)}
}

func (m *mockAchievementRepository) Award(userID uint, level int) (bool, error) {
	if m.records[userID] == nil {
		m.records[userID] = make(map[int]bool)
	}
	if m.records[userID][level] {
		return false, nil
	}
	m.records[userID][level] = true
	return true, nil
}

func (m *mockAchievementRepository) HasUserEarned(userID uint, level int) (bool, error) {
	return m.records[userID][level], nil
}

func (m *mockAchievementRepository) ListByUser(userID uint) ([]models.LevelAchievement, error) {
	var out []models.LevelAchievement
	for level := range m.records[userID] {
		out = append(out, models.LevelAchievement{UserID: userID, Level: level})
	}
	return out, nil
}

func (m *mockAchievementRepository) CountByUser(userID uint) (int64, error) {
	return int64(len(m.records[userID])), nil
}

func (m *mockAchievementRepository) HolderCount(level int) (int64, error) {
	var count int64
	for _, levels := range m.records {
		if levels[level] {
			count++
		}
	}
	return count, nil
}

type mockCompletionRepository struct {
	times map[uint][]time.Time
}

func (m *mockCompletionRepository) HabitCompletionTimes(userID uint) ([]time.Time, error) {
	return m.times[userID], nil
}

type mockStatsRepository struct {
	goals      map[uint]int64
	challenges map[uint]int64
	journals   map[uint]int64
}

func (m *mockStatsRepository) CompletedGoalCount(userID uint) (int64, error) {
	return m.goals[userID], nil
}

func (m *mockStatsRepository) CompletedChallengeCount(userID uint) (int64, error) {
	return m.challenges[userID], nil
}

func (m *mockStatsRepository) JournalEntryCount(userID uint) (int64, error) {
	return m.journals[userID], nil
}

// Test setup helper
func setupTestService(t *testing.T) (*Service, *mockAchievementRepository, *mockCompletionRepository, *mockStatsRepository) {
	t.Helper()

	catalog, err := levels.New([]levels.Definition{
		{Level: 1, XPRequired: 0, Title: "Novice", BadgeName: "First Steps"},
		{Level: 2, XPRequired: 100, Title: "Apprentice", BadgeName: "Getting Going"},
	})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	achievementRepo := newMockAchievementRepository()
	completionRepo := &mockCompletionRepository{times: make(map[uint][]time.Time)}
	statsRepo := &mockStatsRepository{
		goals:      make(map[uint]int64),
		challenges: make(map[uint]int64),
		journals:   make(map[uint]int64),
	}
	log := logger.New("debug", "text", "stdout")

	service := NewServiceWithInterfaces(achievementRepo, completionRepo, statsRepo, catalog, log)
	return service, achievementRepo, completionRepo, statsRepo
}

func TestAwardLevelAchievementIdempotent(t *testing.T) {
	service, _, _, _ := setupTestService(t)
	ctx := context.Background()

	awarded, err := service.AwardLevelAchievement(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !awarded {
		t.Error("Expected first award to succeed")
	}

	awarded, err = service.AwardLevelAchievement(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Unexpected error on repeat award: %v", err)
	}
	if awarded {
		t.Error("Expected repeat award to report already held")
	}

	count, err := service.GetUserAchievementCount(ctx, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 achievement, got %d", count)
	}
}

func statusByKind(t *testing.T, statuses []Status, kind Kind) Status {
	t.Helper()
	for _, s := range statuses {
		if s.Kind == kind {
			return s
		}
	}
	t.Fatalf("Status for kind %s not found", kind)
	return Status{}
}

// Early Bird counts qualifying days, not completions: several early
// completions on one morning are still a single day of progress.
func TestEarlyBirdCountsDays(t *testing.T) {
	service, _, completionRepo, _ := setupTestService(t)
	ctx := context.Background()

	early := func(y int, m time.Month, d, hour int) time.Time {
		return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
	}

	// Four distinct early days; day 4 has three early completions and one
	// late completion that must not count.
	completionRepo.times[1] = []time.Time{
		early(2024, 1, 1, 6),
		early(2024, 1, 2, 7),
		early(2024, 1, 3, 8),
		early(2024, 1, 4, 6),
		early(2024, 1, 4, 7),
		early(2024, 1, 4, 8),
		early(2024, 1, 4, 14),
		early(2024, 1, 5, 9), // exactly at the cutoff: not early
	}

	statuses, err := service.EvaluateSpecial(ctx, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	status := statusByKind(t, statuses, KindEarlyBird)
	if status.Progress != 4 {
		t.Errorf("Expected progress 4, got %d", status.Progress)
	}
	if status.Unlocked {
		t.Error("Expected Early Bird locked at 4 of 5 days")
	}

	// A fifth qualifying day unlocks it.
	completionRepo.times[1] = append(completionRepo.times[1], early(2024, 1, 6, 8))
	status2, err := service.EvaluateOne(ctx, 1, KindEarlyBird)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status2.Progress != 5 || !status2.Unlocked {
		t.Errorf("Expected unlocked at 5 days, got progress=%d unlocked=%v", status2.Progress, status2.Unlocked)
	}
}

func TestPerfectionistUsesLongestStreak(t *testing.T) {
	service, _, completionRepo, _ := setupTestService(t)
	ctx := context.Background()

	var times []time.Time
	for d := 1; d <= 7; d++ {
		times = append(times, time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC))
	}
	// A later isolated day does not reset the longest run.
	times = append(times, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	completionRepo.times[1] = times

	status, err := service.EvaluateOne(ctx, 1, KindPerfectionist)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status.Progress != 7 {
		t.Errorf("Expected progress 7, got %d", status.Progress)
	}
	if !status.Unlocked {
		t.Error("Expected Perfectionist unlocked at a 7-day streak")
	}
}

func TestCountBackedPredicates(t *testing.T) {
	service, _, _, statsRepo := setupTestService(t)
	ctx := context.Background()

	statsRepo.goals[1] = 10
	statsRepo.challenges[1] = 4
	statsRepo.journals[1] = 25

	statuses, err := service.EvaluateSpecial(ctx, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		kind     Kind
		progress int64
		unlocked bool
	}{
		{KindGoalCrusher, 10, true},
		{KindSocialButterfly, 4, false},
		{KindDeepThinker, 25, true},
	}
	for _, tt := range tests {
		status := statusByKind(t, statuses, tt.kind)
		if status.Progress != tt.progress || status.Unlocked != tt.unlocked {
			t.Errorf("%s: expected progress=%d unlocked=%v, got progress=%d unlocked=%v",
				tt.kind, tt.progress, tt.unlocked, status.Progress, status.Unlocked)
		}
	}
}

func TestEvaluateSpecialCoversRegistry(t *testing.T) {
	service, _, _, _ := setupTestService(t)

	statuses, err := service.EvaluateSpecial(context.Background(), 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(statuses) != len(SpecialDefinitions()) {
		t.Errorf("Expected %d statuses, got %d", len(SpecialDefinitions()), len(statuses))
	}
	for _, s := range statuses {
		if s.Unlocked {
			t.Errorf("Expected %s locked with an empty ledger", s.Kind)
		}
	}
}

func TestEvaluateOneUnknownKind(t *testing.T) {
	service, _, _, _ := setupTestService(t)

	if _, err := service.EvaluateOne(context.Background(), 1, Kind("nope")); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
