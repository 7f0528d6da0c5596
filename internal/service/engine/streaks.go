package engine

import (
	"context"
	"fmt"

	"github.com/akarsten/habitquest/internal/streak"
)

// Streaks holds the two query modes side by side: Current answers "is the
// user active right now", Longest answers "best ever".
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// UserStreaks computes streaks over the union of all of a user's habit
// completion dates, deduplicated by day. Computed fresh on every call.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) UserStreaks(ctx context.Context, userID uint) (*Streaks, error) {
	times, err := s.completionRepo.HabitCompletionTimes(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion dates: %w", err)
	}
	return &Streaks{
		Current: streak.Current(times),
		Longest: streak.Longest(times),
	}, nil
}

// HabitStreaks computes streaks for a single habit's completion dates.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) HabitStreaks(ctx context.Context, habitID uint) (*Streaks, error) {
	times, err := s.completionRepo.CompletionTimesByHabit(habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion dates: %w", err)
	}
	return &Streaks{
		Current: streak.Current(times),
		Longest: streak.Longest(times),
	}, nil
}
