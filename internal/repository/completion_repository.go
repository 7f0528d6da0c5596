package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/akarsten/habitquest/internal/models"
)

// CompletionRepository handles activity completion records and the XP column
// they feed. The completion insert and the XP credit share one transaction:
// a user can never end up with a completion logged but no XP, or vice versa.
type CompletionRepository struct {
	db *DB
}

// NewCompletionRepository creates a new completion repository.
func NewCompletionRepository(db *DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// RecordWithXP appends the completion row and credits its XP value to the
// owning user in a single transaction. The credit is a relative update
// (xp = xp + amount) so two concurrent completions serialize at the row and
// neither increment is lost. Returns the user's new XP total.
func (r *CompletionRepository) RecordWithXP(completion *models.ActivityCompletion) (int64, error) {
	var newTotal int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", completion.UserID).
			UpdateColumn("xp", gorm.Expr("xp + ?", completion.XPAwarded))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Create(completion).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Select("xp").First(&user, completion.UserID).Error; err != nil {
			return err
		}
		newTotal = user.XP
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record completion for user %d: %w", completion.UserID, err)
	}

	return newTotal, nil
}

// ListByUser retrieves a user's completions, most recent first.
func (r *CompletionRepository) ListByUser(userID uint, limit int) ([]models.ActivityCompletion, error) {
	query := r.db.Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var completions []models.ActivityCompletion
	if err := query.Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("failed to list completions for user %d: %w", userID, err)
	}
	return completions, nil
}

// HabitCompletionTimes returns the raw timestamps of a user's habit
// completions, ascending. Streaks and the early-bird predicate are computed
// from these in memory rather than with dialect-specific date SQL.
func (r *CompletionRepository) HabitCompletionTimes(userID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.db.Model(&models.ActivityCompletion{}).
		Where("user_id = ? AND source = ?", userID, models.SourceHabit).
		Order("completed_at ASC").
		Pluck("completed_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get completion times for user %d: %w", userID, err)
	}
	return times, nil
}

// CompletionTimesByHabit returns the timestamps of one habit's completions, ascending.
func (r *CompletionRepository) CompletionTimesByHabit(habitID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.db.Model(&models.ActivityCompletion{}).
		Where("habit_id = ?", habitID).
		Order("completed_at ASC").
		Pluck("completed_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get completion times for habit %d: %w", habitID, err)
	}
	return times, nil
}

// CountBySource returns how many completions a user has for a source type.
func (r *CompletionRepository) CountBySource(userID uint, source string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ActivityCompletion{}).
		Where("user_id = ? AND source = ?", userID, source).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s completions for user %d: %w", source, userID, err)
	}
	return count, nil
}
