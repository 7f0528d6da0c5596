package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/akarsten/habitquest/internal/models"
)

// AchievementRepository handles level achievement records.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Award inserts the (user, level) achievement record. The insert ignores the
// unique-constraint conflict, so awarding an already-held achievement is a
// no-op rather than an error. Returns true when a new row was written.
func (r *AchievementRepository) Award(userID uint, level int) (bool, error) {
	record := &models.LevelAchievement{
		UserID:    userID,
		Level:     level,
		AwardedAt: time.Now(),
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "level"}},
		DoNothing: true,
	}).Create(record)
	if res.Error != nil {
		return false, fmt.Errorf("failed to award level %d achievement to user %d: %w", level, userID, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// HasUserEarned checks if a user holds the achievement for a level.
func (r *AchievementRepository) HasUserEarned(userID uint, level int) (bool, error) {
	var count int64
	err := r.db.Model(&models.LevelAchievement{}).
		Where("user_id = ? AND level = ?", userID, level).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser retrieves all level achievements earned by a user, newest first.
func (r *AchievementRepository) ListByUser(userID uint) ([]models.LevelAchievement, error) {
	var records []models.LevelAchievement
	err := r.db.
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&records).Error
	return records, err
}

// CountByUser returns the number of level achievements a user holds.
func (r *AchievementRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.LevelAchievement{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// HolderCount returns how many users hold the achievement for a level.
func (r *AchievementRepository) HolderCount(level int) (int64, error) {
	var count int64
	err := r.db.Model(&models.LevelAchievement{}).
		Where("level = ?", level).
		Count(&count).Error
	return count, err
}

// ListRecent retrieves achievements awarded since the given time, newest first.
func (r *AchievementRepository) ListRecent(since time.Time) ([]models.LevelAchievement, error) {
	var records []models.LevelAchievement
	err := r.db.
		Where("awarded_at >= ?", since).
		Order("awarded_at DESC").
		Find(&records).Error
	return records, err
}
