// Package scheduler runs the daily background jobs: the special achievement
// sweep and streak-break reminders.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akarsten/habitquest/internal/config"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/internal/notifier"
	"github.com/akarsten/habitquest/internal/service/achievements"
	"github.com/akarsten/habitquest/pkg/logger"
)

// UserRepository interface for user listing.
type UserRepository interface {
	List() ([]models.User, error)
}

// CompletionRepository interface for completion date queries.
type CompletionRepository interface {
	HabitCompletionTimes(userID uint) ([]time.Time, error)
}

// AchievementEvaluator interface for the special achievement sweep.
type AchievementEvaluator interface {
	EvaluateSpecial(ctx context.Context, userID uint) ([]achievements.Status, error)
}

// Service handles daily job scheduling.
type Service struct {
	config         *config.Config
	userRepo       UserRepository
	completionRepo CompletionRepository
	achievements   AchievementEvaluator
	emitter        notifier.Emitter
	log            *logger.Logger
	cron           *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	userRepo UserRepository,
	completionRepo CompletionRepository,
	achievements AchievementEvaluator,
	emitter notifier.Emitter,
	log *logger.Logger,
) *Service {
	return &Service{
		config:         cfg,
		userRepo:       userRepo,
		completionRepo: completionRepo,
		achievements:   achievements,
		emitter:        emitter,
		log:            log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := time.LoadLocation(s.config.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if s.config.Scheduler.AchievementEvaluationTime != "" {
		_, err = s.cron.AddFunc(s.config.Scheduler.AchievementEvaluationTime, s.runAchievementSweep)
		if err != nil {
			return fmt.Errorf("failed to register achievement sweep job: %w", err)
		}
		s.log.Info().
			Str("schedule", s.config.Scheduler.AchievementEvaluationTime).
			Msg("Achievement sweep job registered")
	}

	if s.config.Scheduler.StreakReminderTime != "" {
		_, err = s.cron.AddFunc(s.config.Scheduler.StreakReminderTime, s.runStreakReminders)
		if err != nil {
			return fmt.Errorf("failed to register streak reminder job: %w", err)
		}
		s.log.Info().
			Str("schedule", s.config.Scheduler.StreakReminderTime).
			Msg("Streak reminder job registered")
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("timezone", s.config.Scheduler.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}
