package leaderboard

import (
	"context"
	"fmt"

	"github.com/akarsten/habitquest/internal/streak"
)

// UserStats represents comprehensive progression statistics for a user.
type UserStats struct {
	UserID           uint    `json:"user_id"`
	Username         string  `json:"username"`
	XP               int64   `json:"xp"`
	Level            int     `json:"level"`
	LevelTitle       string  `json:"level_title"`
	NextLevelXP      *int64  `json:"next_level_xp"` // nil at max level
	Progress         float64 `json:"progress"`      // 1.0 at max level
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	AchievementCount int     `json:"achievement_count"`
	Rank             int     `json:"rank"`
}

// GetUserStats returns the user's progression snapshot: XP, level, progress
// toward the next threshold, streaks, achievement count and global rank.
func (s *Service) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	stats := &UserStats{
		UserID:   user.ID,
		Username: user.Username,
		XP:       user.XP,
		Level:    user.Level,
		Progress: s.catalog.Progress(user.XP),
	}

	if def, err := s.catalog.Definition(user.Level); err == nil {
		stats.LevelTitle = def.Title
	}
	if next, ok := s.catalog.NextThreshold(user.Level); ok {
		stats.NextLevelXP = &next
	}

	times, err := s.completionRepo.HabitCompletionTimes(userID)
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to get completion dates")
	} else {
		stats.CurrentStreak = streak.Current(times)
		stats.LongestStreak = streak.Longest(times)
	}

	if count, err := s.achievementRepo.CountByUser(userID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to get achievement count")
	} else {
		stats.AchievementCount = int(count)
	}

	rank, err := s.GetUserRank(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to get rank")
	} else {
		stats.Rank = rank
	}

	return stats, nil
}
