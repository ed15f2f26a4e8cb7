package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/highlowbuffalo/internal/models"
)

// GetSettings returns the user's settings, inserting the defaults on first access.
func (s *SQLiteStore) GetSettings(ctx context.Context, userID string) (models.UserSettings, error) {
	def := models.DefaultSettings(userID)
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_settings (user_id, notification_cadence) VALUES (?, ?)",
		userID, string(def.NotificationCadence),
	)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("failed to initialise settings: %w", err)
	}

	var cadence string
	err = s.db.QueryRowContext(ctx,
		"SELECT notification_cadence FROM user_settings WHERE user_id = ?", userID,
	).Scan(&cadence)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return models.UserSettings{UserID: userID, NotificationCadence: models.Cadence(cadence)}, nil
}

// SaveSettings upserts the user's settings.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings models.UserSettings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, notification_cadence) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET notification_cadence = excluded.notification_cadence`,
		settings.UserID, string(settings.NotificationCadence),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
