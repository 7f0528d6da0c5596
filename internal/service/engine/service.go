// Package engine implements the XP ledger and level-up detection: it turns
// activity completions into XP credits, detects every crossed level
// threshold, and fans out achievement awards and notification events.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/akarsten/habitquest/internal/levels"
	prommetrics "github.com/akarsten/habitquest/internal/metrics"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/internal/notifier"
	"github.com/akarsten/habitquest/internal/repository"
	"github.com/akarsten/habitquest/pkg/logger"
)

// UserRepository interface for user state operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	SetLevel(userID uint, level int) error
}

// CompletionRepository interface for the completion/XP transaction.
type CompletionRepository interface {
	RecordWithXP(completion *models.ActivityCompletion) (int64, error)
	HabitCompletionTimes(userID uint) ([]time.Time, error)
	CompletionTimesByHabit(habitID uint) ([]time.Time, error)
}

// AchievementAwarder interface for level achievement awarding.
type AchievementAwarder interface {
	AwardLevelAchievement(ctx context.Context, userID uint, level int) (bool, error)
}

// Award describes one qualifying completion event. The caller has already
// verified the completion is new for its period.
type Award struct {
	UserID      uint
	Amount      int
	Source      string // 'habit', 'goal', 'challenge'
	HabitID     *uint  // set for habit completions
	Description string
}

// AwardResult reports the outcome of one XP credit.
type AwardResult struct {
	NewTotal     int64 `json:"new_total"`
	OldLevel     int   `json:"old_level"`
	NewLevel     int   `json:"new_level"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained []int `json:"levels_gained"` // every crossed level, ascending
}

// Service orchestrates the award chain.
type Service struct {
	userRepo       UserRepository
	completionRepo CompletionRepository
	achievements   AchievementAwarder
	catalog        *levels.Catalog
	emitter        notifier.Emitter
	log            *logger.Logger
}

// NewService creates a new engine service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	completionRepo *repository.CompletionRepository,
	achievements AchievementAwarder,
	catalog *levels.Catalog,
	emitter notifier.Emitter,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:       userRepo,
		completionRepo: completionRepo,
		achievements:   achievements,
		catalog:        catalog,
		emitter:        emitter,
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new engine service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	completionRepo CompletionRepository,
	achievements AchievementAwarder,
	catalog *levels.Catalog,
	emitter notifier.Emitter,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:       userRepo,
		completionRepo: completionRepo,
		achievements:   achievements,
		catalog:        catalog,
		emitter:        emitter,
		log:            log,
	}
}

// AwardXP credits XP for a completion, records the completion, and resolves
// every level boundary the new total crosses. A single award can skip
// levels; one achievement and one level-up event fire per crossed level,
// plus an achievement-kind event when the award is fresh.
func (s *Service) AwardXP(ctx context.Context, award Award) (*AwardResult, error) {
	if award.Amount <= 0 {
		prommetrics.RecordXPAwardFailure(award.Source)
		return nil, fmt.Errorf("amount %d: %w", award.Amount, ErrInvalidAmount)
	}
	switch award.Source {
	case models.SourceHabit, models.SourceGoal, models.SourceChallenge:
	default:
		prommetrics.RecordXPAwardFailure(award.Source)
		return nil, fmt.Errorf("source %q: %w", award.Source, ErrInvalidSource)
	}

	user, err := s.userRepo.GetByID(award.UserID)
	if err != nil {
		prommetrics.RecordXPAwardFailure(award.Source)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", award.UserID, ErrUserNotFound)
		}
		return nil, err
	}
	oldLevel := user.Level

	// Completion row and XP credit commit together; the credit itself is a
	// relative update so concurrent awards cannot lose an increment.
	newTotal, err := s.completionRepo.RecordWithXP(&models.ActivityCompletion{
		UserID:      award.UserID,
		HabitID:     award.HabitID,
		Source:      award.Source,
		XPAwarded:   award.Amount,
		Description: award.Description,
		CompletedAt: time.Now(),
	})
	if err != nil {
		prommetrics.RecordXPAwardFailure(award.Source)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", award.UserID, ErrUserNotFound)
		}
		return nil, err
	}

	prommetrics.RecordXPAward(award.Source, award.Amount)

	result := &AwardResult{
		NewTotal:     newTotal,
		OldLevel:     oldLevel,
		NewLevel:     oldLevel,
		LevelsGained: []int{},
	}

	crossed := s.detectLevelUps(oldLevel, newTotal)
	if len(crossed) > 0 {
		// Persist the highest crossed level in one write, not one at a time.
		top := crossed[len(crossed)-1]
		if err := s.userRepo.SetLevel(award.UserID, top); err != nil {
			return nil, err
		}
		result.NewLevel = top
		result.LeveledUp = true
		result.LevelsGained = crossed
		prommetrics.RecordLevelUps(len(crossed))

		for _, level := range crossed {
			fresh, err := s.achievements.AwardLevelAchievement(ctx, award.UserID, level)
			if err != nil {
				return nil, err
			}
			s.emit(ctx, s.levelUpEvent(award.UserID, level))
			if fresh {
				s.emit(ctx, s.achievementEvent(award.UserID, level))
			}
		}

		s.log.Info().
			Uint("user_id", award.UserID).
			Int("old_level", oldLevel).
			Int("new_level", top).
			Ints("levels_gained", crossed).
			Msg("User leveled up")
	}

	s.emit(ctx, notifier.NewEvent(
		award.UserID,
		notifier.KindXP,
		fmt.Sprintf("+%d XP", award.Amount),
		fmt.Sprintf("You earned %d XP for %s: %s", award.Amount, award.Source, award.Description),
	))

	s.log.Debug().
		Uint("user_id", award.UserID).
		Str("source", award.Source).
		Int("amount", award.Amount).
		Int64("new_total", newTotal).
		Msg("XP awarded")

	return result, nil
}

// detectLevelUps returns every catalog level above oldLevel whose threshold
// is cleared by newXP, ascending.
func (s *Service) detectLevelUps(oldLevel int, newXP int64) []int {
	var crossed []int
	for level := oldLevel + 1; ; level++ {
		threshold, err := s.catalog.ThresholdForLevel(level)
		if err != nil {
			// Past the last defined level: max level reached.
			break
		}
		if newXP < threshold {
			break
		}
		crossed = append(crossed, level)
	}
	return crossed
}

// levelUpEvent builds the notification for one crossed level, using the
// catalog's badge text when the level is defined.
func (s *Service) levelUpEvent(userID uint, level int) notifier.Event {
	title := fmt.Sprintf("Level %d reached", level)
	message := fmt.Sprintf("You are now level %d.", level)
	if def, err := s.catalog.Definition(level); err == nil {
		title = fmt.Sprintf("Level %d: %s", level, def.Title)
		message = fmt.Sprintf("You reached level %d and earned the badge %q.", level, def.BadgeName)
	}
	return notifier.NewEvent(userID, notifier.KindLevel, title, message)
}

// achievementEvent builds the notification for a freshly awarded level
// achievement. Repeat crossings never reach here: the awarder reports them
// as already held.
func (s *Service) achievementEvent(userID uint, level int) notifier.Event {
	title := fmt.Sprintf("Achievement unlocked (level %d)", level)
	message := fmt.Sprintf("You earned the achievement for reaching level %d.", level)
	if def, err := s.catalog.Definition(level); err == nil && def.BadgeName != "" {
		title = fmt.Sprintf("Achievement unlocked: %s", def.BadgeName)
		if def.BadgeDescription != "" {
			message = def.BadgeDescription
		}
	}
	return notifier.NewEvent(userID, notifier.KindAchievement, title, message)
}

// emit delivers best-effort: a failed notification never fails the award.
func (s *Service) emit(ctx context.Context, event notifier.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.log.Warn().
			Err(err).
			Uint("user_id", event.UserID).
			Str("kind", event.Kind).
			Msg("Failed to emit event")
	}
}
