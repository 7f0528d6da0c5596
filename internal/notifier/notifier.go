// Package notifier delivers progression events to users via an incoming
// webhook. Suppression by per-user preference happens here, never in the
// engine: the engine emits every event and the notifier decides delivery.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/akarsten/habitquest/internal/config"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/pkg/logger"
)

// Event kinds. The engine emits xp/level/achievement; the scheduler adds
// streak reminders. Unknown kinds default to deliverable.
const (
	KindXP          = "xp"
	KindLevel       = "level"
	KindAchievement = "achievement"
	KindStreak      = "streak"
)

// Event is one user-visible progression event.
type Event struct {
	ID         uuid.UUID `json:"id"`
	UserID     uint      `json:"user_id"`
	Kind       string    `json:"kind"` // 'xp', 'level', 'achievement'
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(userID uint, kind, title, message string) Event {
	return Event{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Title:      title,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
}

// Emitter receives progression events. The engine depends on this interface
// so tests can record emissions without a webhook.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// PreferenceSource supplies per-user delivery flags.
type PreferenceSource interface {
	GetNotificationPreferences(userID uint) (*models.NotificationPreferences, error)
}

// Client posts events to a webhook, dropping kinds the user has disabled.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	prefs      PreferenceSource
	log        *logger.Logger
}

// NewClient creates a new webhook notifier.
func NewClient(cfg *config.NotifierConfig, prefs PreferenceSource, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		prefs:      prefs,
		log:        log,
	}
}

// payload is the webhook message body.
type payload struct {
	Channel string `json:"channel,omitempty"`
	Event   Event  `json:"event"`
	Text    string `json:"text"`
}

// Emit delivers an event unless the notifier is disabled or the user has
// turned the event's kind off.
func (c *Client) Emit(ctx context.Context, event Event) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifier is disabled, skipping event")
		return nil
	}

	prefs, err := c.prefs.GetNotificationPreferences(event.UserID)
	if err != nil {
		return fmt.Errorf("failed to load notification preferences: %w", err)
	}
	if !prefs.Enabled(event.Kind) {
		c.log.Debug().
			Uint("user_id", event.UserID).
			Str("kind", event.Kind).
			Msg("Event suppressed by user preference")
		return nil
	}

	body, err := json.Marshal(payload{
		Channel: c.channel,
		Event:   event,
		Text:    fmt.Sprintf("**%s**\n%s", event.Title, event.Message),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("event_id", event.ID.String()).
		Uint("user_id", event.UserID).
		Str("kind", event.Kind).
		Msg("Delivered event")

	return nil
}
