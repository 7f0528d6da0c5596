package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/akarsten/habitquest/internal/config"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/internal/notifier"
	"github.com/akarsten/habitquest/internal/service/achievements"
	"github.com/akarsten/habitquest/pkg/logger"
)

// Mock dependencies for testing
type mockUserRepository struct {
	users []models.User
}

func (m *mockUserRepository) List() ([]models.User, error) {
	return m.users, nil
}

type mockCompletionRepository struct {
	times map[uint][]time.Time
}

func (m *mockCompletionRepository) HabitCompletionTimes(userID uint) ([]time.Time, error) {
	return m.times[userID], nil
}

type mockEvaluator struct {
	statuses map[uint][]achievements.Status
	calls    []uint
}

func (m *mockEvaluator) EvaluateSpecial(_ context.Context, userID uint) ([]achievements.Status, error) {
	m.calls = append(m.calls, userID)
	return m.statuses[userID], nil
}

type recordingEmitter struct {
	events []notifier.Event
}

func (r *recordingEmitter) Emit(_ context.Context, event notifier.Event) error {
	r.events = append(r.events, event)
	return nil
}

func setupTestScheduler(t *testing.T, cfg *config.SchedulerConfig) (*Service, *mockUserRepository, *mockCompletionRepository, *mockEvaluator, *recordingEmitter) {
	t.Helper()

	userRepo := &mockUserRepository{}
	completionRepo := &mockCompletionRepository{times: make(map[uint][]time.Time)}
	evaluator := &mockEvaluator{statuses: make(map[uint][]achievements.Status)}
	emitter := &recordingEmitter{}

	service := NewService(
		&config.Config{Scheduler: *cfg},
		userRepo,
		completionRepo,
		evaluator,
		emitter,
		logger.New("debug", "text", "stdout"),
	)
	return service, userRepo, completionRepo, evaluator, emitter
}

func TestStartDisabled(t *testing.T) {
	service, _, _, _, _ := setupTestScheduler(t, &config.SchedulerConfig{Enabled: false})

	if err := service.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if service.cron != nil {
		t.Error("Expected no cron instance when disabled")
	}
}

func TestStartAndStop(t *testing.T) {
	service, _, _, _, _ := setupTestScheduler(t, &config.SchedulerConfig{
		Enabled:                   true,
		AchievementEvaluationTime: "0 6 * * *",
		StreakReminderTime:        "0 18 * * *",
		Timezone:                  "UTC",
	})

	if err := service.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(service.cron.Entries()) != 2 {
		t.Errorf("Expected 2 registered jobs, got %d", len(service.cron.Entries()))
	}

	service.Stop()
}

func TestStartInvalidTimezone(t *testing.T) {
	service, _, _, _, _ := setupTestScheduler(t, &config.SchedulerConfig{
		Enabled:  true,
		Timezone: "Mars/Olympus_Mons",
	})

	if err := service.Start(); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}

func TestStartInvalidSchedule(t *testing.T) {
	service, _, _, _, _ := setupTestScheduler(t, &config.SchedulerConfig{
		Enabled:                   true,
		AchievementEvaluationTime: "not a cron spec",
		Timezone:                  "UTC",
	})

	if err := service.Start(); err == nil {
		t.Error("Expected error for invalid cron spec")
	}
}

func TestRunAchievementSweep(t *testing.T) {
	service, userRepo, _, evaluator, _ := setupTestScheduler(t, &config.SchedulerConfig{Enabled: true, Timezone: "UTC"})

	userRepo.users = []models.User{{ID: 1}, {ID: 2}}
	evaluator.statuses[1] = []achievements.Status{
		{Kind: achievements.KindEarlyBird, Progress: 5, Target: 5, Unlocked: true},
	}
	evaluator.statuses[2] = []achievements.Status{
		{Kind: achievements.KindEarlyBird, Progress: 2, Target: 5, Unlocked: false},
	}

	service.runAchievementSweep()

	if len(evaluator.calls) != 2 {
		t.Errorf("Expected 2 users evaluated, got %d", len(evaluator.calls))
	}
}

func TestRunStreakRemindersOnlyAtRiskUsers(t *testing.T) {
	service, userRepo, completionRepo, _, emitter := setupTestScheduler(t, &config.SchedulerConfig{Enabled: true, Timezone: "UTC"})

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	threeDaysAgo := today.AddDate(0, 0, -3)

	userRepo.users = []models.User{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	// At risk: last completion was yesterday.
	completionRepo.times[1] = []time.Time{yesterday.AddDate(0, 0, -1), yesterday}
	// Already completed today.
	completionRepo.times[2] = []time.Time{yesterday, today}
	// Streak long gone.
	completionRepo.times[3] = []time.Time{threeDaysAgo}
	// No completions at all.

	service.runStreakReminders()

	if len(emitter.events) != 1 {
		t.Fatalf("Expected 1 reminder, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.UserID != 1 {
		t.Errorf("Expected reminder for user 1, got user %d", event.UserID)
	}
	if event.Kind != notifier.KindStreak {
		t.Errorf("Expected streak kind, got %s", event.Kind)
	}
}

func TestStreakReminderMessage(t *testing.T) {
	if got := streakReminderMessage(1); got != "Complete a habit today to start building your streak." {
		t.Errorf("Unexpected message for streak 1: %q", got)
	}
	if got := streakReminderMessage(6); got != "Complete a habit today to keep your 6-day streak alive." {
		t.Errorf("Unexpected message for streak 6: %q", got)
	}
}
