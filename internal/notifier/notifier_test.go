package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akarsten/habitquest/internal/config"
	"github.com/akarsten/habitquest/internal/models"
	"github.com/akarsten/habitquest/pkg/logger"
)

type mockPreferenceSource struct {
	prefs map[uint]*models.NotificationPreferences
}

func (m *mockPreferenceSource) GetNotificationPreferences(userID uint) (*models.NotificationPreferences, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return &models.NotificationPreferences{
		UserID:             userID,
		XPEnabled:          true,
		LevelEnabled:       true,
		AchievementEnabled: true,
	}, nil
}

func setupTestClient(t *testing.T, enabled bool) (*Client, *mockPreferenceSource, *[]payload) {
	t.Helper()

	var received []payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p payload
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("Failed to decode webhook payload: %v", err)
		}
		received = append(received, p)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	prefs := &mockPreferenceSource{prefs: make(map[uint]*models.NotificationPreferences)}
	client := NewClient(&config.NotifierConfig{
		WebhookURL: server.URL,
		Channel:    "progression",
		Enabled:    enabled,
	}, prefs, logger.New("debug", "text", "stdout"))

	return client, prefs, &received
}

func TestEmitDeliversEvent(t *testing.T) {
	client, _, received := setupTestClient(t, true)

	event := NewEvent(1, KindLevel, "Level 2: Apprentice", "You reached level 2.")
	if err := client.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	if len(*received) != 1 {
		t.Fatalf("Expected 1 delivery, got %d", len(*received))
	}
	got := (*received)[0]
	if got.Channel != "progression" {
		t.Errorf("Expected channel progression, got %s", got.Channel)
	}
	if got.Event.Kind != KindLevel || got.Event.UserID != 1 {
		t.Errorf("Unexpected event: %+v", got.Event)
	}
	if !strings.Contains(got.Text, "Level 2") {
		t.Errorf("Expected title in text, got %q", got.Text)
	}
}

func TestEmitDisabledClient(t *testing.T) {
	client, _, received := setupTestClient(t, false)

	err := client.Emit(context.Background(), NewEvent(1, KindXP, "+10 XP", "msg"))
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(*received) != 0 {
		t.Errorf("Expected no deliveries from a disabled client, got %d", len(*received))
	}
}

func TestEmitSuppressedByPreference(t *testing.T) {
	client, prefs, received := setupTestClient(t, true)

	prefs.prefs[1] = &models.NotificationPreferences{
		UserID:             1,
		XPEnabled:          false,
		LevelEnabled:       true,
		AchievementEnabled: true,
	}

	// XP is off for this user; suppression is silent, not an error.
	if err := client.Emit(context.Background(), NewEvent(1, KindXP, "+10 XP", "msg")); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(*received) != 0 {
		t.Errorf("Expected suppressed event, got %d deliveries", len(*received))
	}

	// Level is still on.
	if err := client.Emit(context.Background(), NewEvent(1, KindLevel, "Level 2", "msg")); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(*received) != 1 {
		t.Errorf("Expected 1 delivery, got %d", len(*received))
	}
}

func TestEmitUnknownKindDelivered(t *testing.T) {
	client, prefs, received := setupTestClient(t, true)

	prefs.prefs[1] = &models.NotificationPreferences{UserID: 1}

	// Kinds without a dedicated flag default to deliverable.
	if err := client.Emit(context.Background(), NewEvent(1, KindStreak, "Streak at risk", "msg")); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(*received) != 1 {
		t.Errorf("Expected 1 delivery, got %d", len(*received))
	}
}

func TestEmitWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(&config.NotifierConfig{
		WebhookURL: server.URL,
		Enabled:    true,
	}, &mockPreferenceSource{prefs: make(map[uint]*models.NotificationPreferences)}, logger.New("debug", "text", "stdout"))

	err := client.Emit(context.Background(), NewEvent(1, KindXP, "+10 XP", "msg"))
	if err == nil {
		t.Error("Expected error on non-200 webhook response")
	}
}

func TestNewEventFields(t *testing.T) {
	a := NewEvent(7, KindAchievement, "title", "message")
	b := NewEvent(7, KindAchievement, "title", "message")

	if a.ID == b.ID {
		t.Error("Expected distinct event IDs")
	}
	if a.UserID != 7 || a.Kind != KindAchievement {
		t.Errorf("Unexpected event: %+v", a)
	}
	if a.OccurredAt.IsZero() {
		t.Error("Expected OccurredAt to be set")
	}
}
