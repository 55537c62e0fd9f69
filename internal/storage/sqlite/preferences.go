package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"billmate/internal/models"
	"billmate/internal/storage"
)

// GetNotificationPreference retrieves a user's reminder configuration.
func (s *SQLiteStore) GetNotificationPreference(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	pref := &models.NotificationPreference{}
	var days string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, days_before_due, notify_on_paid, notify_on_overdue, updated_at
		 FROM notification_preferences WHERE user_id = ?`,
		userID,
	).Scan(&pref.UserID, &days, &pref.NotifyOnPaid, &pref.NotifyOnOverdue, &pref.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preferences for %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(days), &pref.DaysBeforeDue); err != nil {
		return nil, fmt.Errorf("invalid stored reminder offsets: %w", err)
	}
	return pref, nil
}

// UpsertNotificationPreference creates or replaces the user's reminder
// configuration. One record per user.
func (s *SQLiteStore) UpsertNotificationPreference(ctx context.Context, pref *models.NotificationPreference) error {
	pref.UpdatedAt = time.Now().Unix()
	days, err := json.Marshal(pref.DaysBeforeDue)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder offsets: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notification_preferences (user_id, days_before_due, notify_on_paid, notify_on_overdue, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     days_before_due = excluded.days_before_due,
		     notify_on_paid = excluded.notify_on_paid,
		     notify_on_overdue = excluded.notify_on_overdue,
		     updated_at = excluded.updated_at`,
		pref.UserID, string(days), pref.NotifyOnPaid, pref.NotifyOnOverdue, pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}
