package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/akarsten/habitquest/internal/streak"
)

// Kind identifies a special achievement predicate.
type Kind string

// Special achievement kinds.
const (
	KindEarlyBird       Kind = "early_bird"
	KindPerfectionist   Kind = "perfectionist"
	KindGoalCrusher     Kind = "goal_crusher"
	KindSocialButterfly Kind = "social_butterfly"
	KindDeepThinker     Kind = "deep_thinker"
)

// earlyBirdCutoffHour is the local hour before which a completion counts as
// an early one.
const earlyBirdCutoffHour = 9

// Definition describes one special achievement: its target count and the
// evaluator that computes the user's current count from the ledger.
type Definition struct {
	Kind        Kind
	Name        string
	Description string
	Target      int64
	evaluate    func(ctx context.Context, s *Service, userID uint) (int64, error)
}

// Status is the evaluated state of one special achievement for a user.
type Status struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Progress    int64  `json:"progress"`
	Target      int64  `json:"target"`
	Unlocked    bool   `json:"unlocked"`
}

// registry is the fixed predicate table, evaluated in this order. Each
// evaluator is pure over the ledger; nothing is persisted for these.
var registry = []Definition{
	{
		Kind:        KindEarlyBird,
		Name:        "Early Bird",
		Description: "Complete habits before 9 AM on 5 different days",
		Target:      5,
		evaluate:    evaluateEarlyBird,
	},
	{
		Kind:        KindPerfectionist,
		Name:        "Perfectionist",
		Description: "Keep a 7-day completion streak",
		Target:      7,
		evaluate:    evaluatePerfectionist,
	},
	{
		Kind:        KindGoalCrusher,
		Name:        "Goal Crusher",
		Description: "Complete 10 goals",
		Target:      10,
		evaluate:    evaluateGoalCrusher,
	},
	{
		Kind:        KindSocialButterfly,
		Name:        "Social Butterfly",
		Description: "Complete 5 challenges",
		Target:      5,
		evaluate:    evaluateSocialButterfly,
	},
	{
		Kind:        KindDeepThinker,
		Name:        "Deep Thinker",
		Description: "Write 20 journal entries",
		Target:      20,
		evaluate:    evaluateDeepThinker,
	},
}

// SpecialDefinitions returns the fixed special achievement catalog.
func SpecialDefinitions() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// EvaluateSpecial evaluates every special achievement for a user.
func (s *Service) EvaluateSpecial(ctx context.Context, userID uint) ([]Status, error) {
	statuses := make([]Status, 0, len(registry))
	for _, def := range registry {
		progress, err := def.evaluate(ctx, s, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s for user %d: %w", def.Kind, userID, err)
		}
		statuses = append(statuses, Status{
			Kind:        def.Kind,
			Name:        def.Name,
			Description: def.Description,
			Progress:    progress,
			Target:      def.Target,
			Unlocked:    progress >= def.Target,
		})
	}
	return statuses, nil
}

// EvaluateOne evaluates a single special achievement by kind.
func (s *Service) EvaluateOne(ctx context.Context, userID uint, kind Kind) (*Status, error) {
	for _, def := range registry {
		if def.Kind != kind {
			continue
		}
		progress, err := def.evaluate(ctx, s, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s for user %d: %w", def.Kind, userID, err)
		}
		return &Status{
			Kind:        def.Kind,
			Name:        def.Name,
			Description: def.Description,
			Progress:    progress,
			Target:      def.Target,
			Unlocked:    progress >= def.Target,
		}, nil
	}
	return nil, fmt.Errorf("unknown special achievement kind %q", kind)
}

// evaluateEarlyBird counts distinct calendar days with at least one habit
// completion before the cutoff hour. Days are counted, not completions: ten
// early completions on one morning still count as a single qualifying day.
func evaluateEarlyBird(_ context.Context, s *Service, userID uint) (int64, error) {
	times, err := s.completionRepo.HabitCompletionTimes(userID)
	if err != nil {
		return 0, err
	}

	days := make(map[time.Time]struct{})
	for _, t := range times {
		if t.Hour() >= earlyBirdCutoffHour {
			continue
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		days[day] = struct{}{}
	}
	return int64(len(days)), nil
}

// evaluatePerfectionist reports the longest streak over the union of all
// habit completion dates.
func evaluatePerfectionist(_ context.Context, s *Service, userID uint) (int64, error) {
	times, err := s.completionRepo.HabitCompletionTimes(userID)
	if err != nil {
		return 0, err
	}
	return int64(streak.Longest(times)), nil
}

func evaluateGoalCrusher(_ context.Context, s *Service, userID uint) (int64, error) {
	return s.statsRepo.CompletedGoalCount(userID)
}

func evaluateSocialButterfly(_ context.Context, s *Service, userID uint) (int64, error) {
	return s.statsRepo.CompletedChallengeCount(userID)
}

func evaluateDeepThinker(_ context.Context, s *Service, userID uint) (int64, error) {
	return s.statsRepo.JournalEntryCount(userID)
}
