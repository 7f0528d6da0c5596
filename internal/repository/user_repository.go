package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/akarsten/habitquest/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// List retrieves all users.
func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListByXP retrieves users ordered by XP descending. A limit of 0 means no limit.
func (r *UserRepository) ListByXP(limit int) ([]models.User, error) {
	query := r.db.Order("xp DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users by xp: %w", err)
	}
	return users, nil
}

// SetLevel raises the user's persisted level. The level column only ever
// moves up through this path, so a stale writer cannot undo a higher level.
func (r *UserRepository) SetLevel(userID uint, level int) error {
	err := r.db.Model(&models.User{}).
		Where("id = ? AND level < ?", userID, level).
		UpdateColumn("level", level).Error
	if err != nil {
		return fmt.Errorf("failed to set level for user %d: %w", userID, err)
	}
	return nil
}

// GetNotificationPreferences returns the user's delivery flags, defaulting
// to all-enabled when no row exists yet.
func (r *UserRepository) GetNotificationPreferences(userID uint) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.NotificationPreferences{
				UserID:             userID,
				XPEnabled:          true,
				LevelEnabled:       true,
				AchievementEnabled: true,
			}, nil
		}
		return nil, fmt.Errorf("failed to get notification preferences for user %d: %w", userID, err)
	}
	return &prefs, nil
}

// SaveNotificationPreferences creates or updates the user's delivery flags.
func (r *UserRepository) SaveNotificationPreferences(prefs *models.NotificationPreferences) error {
	var existing models.NotificationPreferences
	err := r.db.Where("user_id = ?", prefs.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(prefs).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load notification preferences: %w", err)
	}
	prefs.ID = existing.ID
	return r.db.Save(prefs).Error
}
