// Package models defines domain models for the habit tracking system.
package models

import (
	"time"
)

// User represents a registered user and their progression state.
// XP is cumulative and never decreases through the award path; Level is
// always the highest catalog level whose threshold is <= XP.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	XP        int64     `gorm:"not null;default:0" json:"xp"`
	Level     int       `gorm:"not null;default:1" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// NotificationPreferences holds per-user delivery flags. They are consulted
// by the notifier only; the engine emits events unconditionally.
type NotificationPreferences struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User             User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	XPEnabled        bool      `gorm:"not null;default:true" json:"xp_enabled"`
	LevelEnabled     bool      `gorm:"not null;default:true" json:"level_enabled"`
	AchievementEnabled bool    `gorm:"not null;default:true" json:"achievement_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for NotificationPreferences model.
func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// Enabled reports whether the given event kind may be delivered.
func (p *NotificationPreferences) Enabled(kind string) bool {
	switch kind {
	case "xp":
		return p.XPEnabled
	case "level":
		return p.LevelEnabled
	case "achievement":
		return p.AchievementEnabled
	default:
		return true
	}
}
