// Package leaderboard provides XP ranking and per-user statistics.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/akarsten/habitquest/internal/cache"
	"github.com/akarsten/habitquest/internal/levels"
	prommetrics "github.com/akarsten/habitquest/internal/metrics"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/internal/repository"
	"github.com/akarsten/habitquest/internal/streak"
	"github.com/akarsten/habitquest/pkg/logger"
)

// cacheTTL bounds how stale a cached leaderboard may be.
const cacheTTL = 60 * time.Second

// UserRepository interface for user queries.
type UserRepository interface {
	ListByXP(limit int) ([]models.User, error)
	GetByID(id uint) (*models.User, error)
}

// CompletionRepository interface for completion date queries.
type CompletionRepository interface {
	HabitCompletionTimes(userID uint) ([]time.Time, error)
}

// AchievementRepository interface for achievement counts.
type AchievementRepository interface {
	CountByUser(userID uint) (int64, error)
}

// Entry represents a single entry in the leaderboard.
type Entry struct {
	UserID           uint   `json:"user_id"`
	Username         string `json:"username"`
	XP               int64  `json:"xp"`
	Level            int    `json:"level"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	AchievementCount int    `json:"achievement_count"`
	Rank             int    `json:"rank"`
}

// Service handles leaderboard generation and user statistics.
type Service struct {
	userRepo        UserRepository
	completionRepo  CompletionRepository
	achievementRepo AchievementRepository
	catalog         *levels.Catalog
	cache           cache.Cache
	log             *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	completionRepo *repository.CompletionRepository,
	achievementRepo *repository.AchievementRepository,
	catalog *levels.Catalog,
	c cache.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:        userRepo,
		completionRepo:  completionRepo,
		achievementRepo: achievementRepo,
		catalog:         catalog,
		cache:           c,
		log:             log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	completionRepo CompletionRepository,
	achievementRepo AchievementRepository,
	catalog *levels.Catalog,
	c cache.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:        userRepo,
		completionRepo:  completionRepo,
		achievementRepo: achievementRepo,
		catalog:         catalog,
		cache:           c,
		log:             log,
	}
}

// GetLeaderboard returns the global XP leaderboard. Results are cached
// briefly; ranking is by XP descending with longest streak as tiebreak.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	key := fmt.Sprintf("leaderboard:global:%d", limit)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("Leaderboard cache read failed")
		} else if cached != "" {
			var entries []Entry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				prommetrics.RecordLeaderboardCache("hit")
				return entries, nil
			}
		}
		prommetrics.RecordLeaderboardCache("miss")
	}

	entries, err := s.buildLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, string(data), cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("Leaderboard cache write failed")
			}
		}
	}

	return entries, nil
}

// buildLeaderboard assembles and ranks the full board from the database.
//
//nolint:revive,unparam // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) buildLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	users, err := s.userRepo.ListByXP(0)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	entries := make([]Entry, 0, len(users))
	for _, user := range users {
		times, err := s.completionRepo.HabitCompletionTimes(user.ID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to get completion dates")
			times = nil
		}

		achievementCount := 0
		if count, err := s.achievementRepo.CountByUser(user.ID); err != nil {
			s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to get achievement count")
		} else {
			achievementCount = int(count)
		}

		entries = append(entries, Entry{
			UserID:           user.ID,
			Username:         user.Username,
			XP:               user.XP,
			Level:            user.Level,
			CurrentStreak:    streak.Current(times),
			LongestStreak:    streak.Longest(times),
			AchievementCount: achievementCount,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		if entries[i].LongestStreak != entries[j].LongestStreak {
			return entries[i].LongestStreak > entries[j].LongestStreak
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// GetUserRank returns the user's position on the global board.
func (s *Service) GetUserRank(ctx context.Context, userID uint) (int, error) {
	entries, err := s.buildLeaderboard(ctx, 0)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if entry.UserID == userID {
			return entry.Rank, nil
		}
	}
	return 0, fmt.Errorf("user not found in leaderboard")
}

// Invalidate drops cached leaderboards after a bulk change.
func (s *Service) Invalidate(ctx context.Context, limits ...int) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(limits))
	for _, limit := range limits {
		keys = append(keys, fmt.Sprintf("leaderboard:global:%d", limit))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Msg("Leaderboard cache invalidation failed")
	}
}
