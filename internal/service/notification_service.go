package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/storage"
)

const (
	MessagePaused = "Notifications are paused."
	MessageDaily  = "You haven't recorded your High, Low, and Buffalo today. Take a moment to reflect!"
	MessageWeekly = "It's been a week since your last reflection. Time to check in!"
)

// ReminderStatus tells a client whether to nudge the user.
type ReminderStatus struct {
	ReminderNeeded bool   `json:"reminder_needed"`
	Message        string `json:"message"`
}

// NotificationService decides when a user should be reminded to reflect.
type NotificationService struct {
	store  storage.Store
	logger *slog.Logger
	now    Clock
}

// NewNotificationService creates a NotificationService. A nil logger uses slog.Default().
func NewNotificationService(store storage.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: store, logger: orDefault(logger), now: systemClock}
}

// Status checks the user's cadence against their latest reflections. Daily
// looks back to midnight UTC, weekly to seven days ago.
func (s *NotificationService) Status(ctx context.Context, userID string) (ReminderStatus, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return ReminderStatus{}, storeErr(err, "failed to load settings")
	}

	status, err := EvaluateReminder(settings.NotificationCadence, s.now(), func(since time.Time) (int, error) {
		return s.store.CountReflectionsSince(ctx, userID, since)
	})
	if err != nil {
		s.logger.Error("Notification status failed", "user_id", userID, "error", err)
		return ReminderStatus{}, storeErr(err, "failed to check reflections")
	}
	if status.ReminderNeeded {
		s.logger.Info("Reminder needed", "user_id", userID, "cadence", settings.NotificationCadence)
	}
	return status, nil
}

// EvaluateReminder applies cadence at now. countSince reports how many
// reflections the user recorded since a given instant; it is not called
// for a paused cadence.
func EvaluateReminder(cadence models.Cadence, now time.Time, countSince func(time.Time) (int, error)) (ReminderStatus, error) {
	now = now.UTC()
	var since time.Time
	var message string
	switch cadence {
	case models.CadencePaused:
		return ReminderStatus{ReminderNeeded: false, Message: MessagePaused}, nil
	case models.CadenceWeekly:
		since = now.AddDate(0, 0, -7)
		message = MessageWeekly
	default:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		message = MessageDaily
	}

	count, err := countSince(since)
	if err != nil {
		return ReminderStatus{}, err
	}
	if count > 0 {
		return ReminderStatus{}, nil
	}
	return ReminderStatus{ReminderNeeded: true, Message: message}, nil
}
