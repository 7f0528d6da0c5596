package models

import (
	"time"
)

// Habit represents a recurring habit a user tracks.
type Habit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Archived    bool      `gorm:"not null;default:false" json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Habit model.
func (Habit) TableName() string {
	return "habits"
}

// ActivityCompletion records one qualifying completion event: a habit
// occurrence, a goal reaching completed, or a challenge finished. Rows are
// append-only; the XP value granted is captured at write time.
type ActivityCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	HabitID     *uint     `gorm:"index" json:"habit_id"` // set only for habit completions
	Habit       *Habit    `gorm:"foreignKey:HabitID" json:"habit,omitempty"`
	Source      string    `gorm:"size:50;not null;index" json:"source"` // 'habit', 'goal', 'challenge'
	XPAwarded   int       `gorm:"not null" json:"xp_awarded"`
	Description string    `gorm:"type:text" json:"description"`
	CompletedAt time.Time `gorm:"not null;index" json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for ActivityCompletion model.
func (ActivityCompletion) TableName() string {
	return "activity_completions"
}

// Goal represents a one-off objective with a completion state transition.
type Goal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string     `gorm:"not null;size:255" json:"title"`
	Status      string     `gorm:"size:50;not null;index" json:"status"` // 'active', 'completed', 'abandoned'
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Goal model.
func (Goal) TableName() string {
	return "goals"
}

// ChallengeParticipation links a user to a challenge they joined.
type ChallengeParticipation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Challenge   string     `gorm:"not null;size:255" json:"challenge"`
	Status      string     `gorm:"size:50;not null;index" json:"status"` // 'active', 'completed', 'dropped'
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for ChallengeParticipation model.
func (ChallengeParticipation) TableName() string {
	return "challenge_participations"
}

// JournalEntry is a dated mood/journal record.
type JournalEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Mood      string    `gorm:"size:50" json:"mood"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for JournalEntry model.
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Completion source constants.
const (
	SourceHabit     = "habit"
	SourceGoal      = "goal"
	SourceChallenge = "challenge"
)

// Goal and challenge status constants.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
	StatusDropped   = "dropped"
)
