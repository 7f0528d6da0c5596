package repository

import (
	"fmt"

	"github.com/akarsten/habitquest/internal/models"
)

// StatsRepository exposes the per-user counts the special achievement
// predicates are evaluated against.
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CompletedGoalCount returns how many of the user's goals are completed.
func (r *StatsRepository) CompletedGoalCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Goal{}).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed goals for user %d: %w", userID, err)
	}
	return count, nil
}

// CompletedChallengeCount returns how many challenges the user has finished.
func (r *StatsRepository) CompletedChallengeCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ChallengeParticipation{}).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed challenges for user %d: %w", userID, err)
	}
	return count, nil
}

// JournalEntryCount returns how many journal entries the user has written.
func (r *StatsRepository) JournalEntryCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.JournalEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count journal entries for user %d: %w", userID, err)
	}
	return count, nil
}
