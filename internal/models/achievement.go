package models

import (
	"time"
)

// LevelAchievement links a user to a level they have reached. The
// (user_id, level) pair is unique; awarding is idempotent at the storage
// boundary via a conflict-ignoring insert.
type LevelAchievement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_level" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Level     int       `gorm:"not null;uniqueIndex:idx_user_level" json:"level"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
}

// TableName specifies the table name for LevelAchievement model.
func (LevelAchievement) TableName() string {
	return "level_achievements"
}
