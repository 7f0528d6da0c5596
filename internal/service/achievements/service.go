// Package achievements awards level achievements and evaluates the special
// achievement predicates. Level achievements are persisted rows; special
// achievements are recomputed from the ledger on every query and never
// written back.
package achievements

import (
	"context"
	"time"

	"github.com/akarsten/habitquest/internal/levels"
	prommetrics "github.com/akarsten/habitquest/internal/metrics"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/internal/repository"
	"github.com/akarsten/habitquest/pkg/logger"
)

// AchievementRepository interface for achievement record operations.
type AchievementRepository interface {
	Award(userID uint, level int) (bool, error)
	HasUserEarned(userID uint, level int) (bool, error)
	ListByUser(userID uint) ([]models.LevelAchievement, error)
	CountByUser(userID uint) (int64, error)
	HolderCount(level int) (int64, error)
}

// CompletionRepository interface for completion date queries.
type CompletionRepository interface {
	HabitCompletionTimes(userID uint) ([]time.Time, error)
}

// StatsRepository interface for the predicate count queries.
type StatsRepository interface {
	CompletedGoalCount(userID uint) (int64, error)
	CompletedChallengeCount(userID uint) (int64, error)
	JournalEntryCount(userID uint) (int64, error)
}

// Service handles achievement awarding and evaluation.
type Service struct {
	achievementRepo AchievementRepository
	completionRepo  CompletionRepository
	statsRepo       StatsRepository
	catalog         *levels.Catalog
	log             *logger.Logger
}

// NewService creates a new achievement service with concrete repository types.
func NewService(
	achievementRepo *repository.AchievementRepository,
	completionRepo *repository.CompletionRepository,
	statsRepo *repository.StatsRepository,
	catalog *levels.Catalog,
	log *logger.Logger,
) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		completionRepo:  completionRepo,
		statsRepo:       statsRepo,
		catalog:         catalog,
		log:             log,
	}
}

// NewServiceWithInterfaces creates a new achievement service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	achievementRepo AchievementRepository,
	completionRepo CompletionRepository,
	statsRepo StatsRepository,
	catalog *levels.Catalog,
	log *logger.Logger,
) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		completionRepo:  completionRepo,
		statsRepo:       statsRepo,
		catalog:         catalog,
		log:             log,
	}
}

// AwardLevelAchievement records the achievement for a crossed level.
// Idempotent: a second call for the same (user, level) returns false and
// leaves exactly one record; it is never an error.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) AwardLevelAchievement(ctx context.Context, userID uint, level int) (bool, error) {
	awarded, err := s.achievementRepo.Award(userID, level)
	if err != nil {
		return false, err
	}
	if !awarded {
		return false, nil
	}

	badgeName := ""
	if def, defErr := s.catalog.Definition(level); defErr == nil {
		badgeName = def.BadgeName
	}

	prommetrics.RecordAchievementAwarded(badgeName)
	if count, countErr := s.achievementRepo.HolderCount(level); countErr == nil {
		prommetrics.SetAchievementHolders(badgeName, int(count))
	}

	s.log.Info().
		Uint("user_id", userID).
		Int("level", level).
		Str("badge", badgeName).
		Msg("Level achievement awarded")

	return true, nil
}

// GetUserAchievements retrieves the user's persisted level achievements.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserAchievements(ctx context.Context, userID uint) ([]models.LevelAchievement, error) {
	return s.achievementRepo.ListByUser(userID)
}

// GetUserAchievementCount returns how many level achievements the user holds.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserAchievementCount(ctx context.Context, userID uint) (int64, error) {
	return s.achievementRepo.CountByUser(userID)
}
