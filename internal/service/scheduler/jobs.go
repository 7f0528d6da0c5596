package scheduler

import (
	"context"
	"fmt"
	"time"

	prommetrics "github.com/akarsten/habitquest/internal/metrics"
	"github.com/akarsten/habitquest/internal/notifier"
	"github.com/akarsten/habitquest/internal/streak"
)

// runAchievementSweep evaluates the special achievement predicates for every
// user. Special achievements are recomputed on query and never stored, so
// the sweep cannot tell a fresh unlock from an old one; it reports unlock
// counts for observability and leaves per-unlock notification to the
// on-demand query path.
func (s *Service) runAchievementSweep() {
	ctx := context.Background()
	start := time.Now()
	s.log.Info().Msg("Starting special achievement sweep")

	users, err := s.userRepo.List()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list users for achievement sweep")
		return
	}

	unlockedTotal := 0
	for _, user := range users {
		statuses, err := s.achievements.EvaluateSpecial(ctx, user.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to evaluate special achievements")
			continue
		}
		for _, status := range statuses {
			if status.Unlocked {
				unlockedTotal++
				s.log.Debug().
					Uint("user_id", user.ID).
					Str("kind", string(status.Kind)).
					Msg("Special achievement unlocked")
			}
		}
	}

	duration := time.Since(start)
	prommetrics.SetSchedulerLastRun()
	prommetrics.ObserveSchedulerJobDuration("achievement_sweep", duration.Seconds())

	s.log.Info().
		Int("users_evaluated", len(users)).
		Int("unlocked_total", unlockedTotal).
		Dur("duration", duration).
		Msg("Special achievement sweep complete")
}

// runStreakReminders notifies users whose streak ends yesterday: one more
// day without a completion and the run is broken.
func (s *Service) runStreakReminders() {
	ctx := context.Background()
	start := time.Now()
	s.log.Info().Msg("Starting streak reminder run")

	users, err := s.userRepo.List()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list users for streak reminders")
		return
	}

	reminded := 0
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, user := range users {
		times, err := s.completionRepo.HabitCompletionTimes(user.ID)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to get completion dates")
			continue
		}
		if len(times) == 0 {
			continue
		}

		last := times[len(times)-1]
		lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
		if !lastDay.Equal(today.AddDate(0, 0, -1)) {
			// Either already completed today or the streak is long gone.
			continue
		}

		current := streak.Current(times)
		event := notifier.NewEvent(
			user.ID,
			notifier.KindStreak,
			"Your streak is at risk",
			streakReminderMessage(current),
		)
		if err := s.emitter.Emit(ctx, event); err != nil {
			s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to emit streak reminder")
			continue
		}
		reminded++
	}

	duration := time.Since(start)
	prommetrics.SetSchedulerLastRun()
	prommetrics.ObserveSchedulerJobDuration("streak_reminders", duration.Seconds())

	s.log.Info().
		Int("users_checked", len(users)).
		Int("reminded", reminded).
		Dur("duration", duration).
		Msg("Streak reminder run complete")
}

func streakReminderMessage(current int) string {
	if current == 1 {
		return "Complete a habit today to start building your streak."
	}
	return fmt.Sprintf("Complete a habit today to keep your %d-day streak alive.", current)
}
