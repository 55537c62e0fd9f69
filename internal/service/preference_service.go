package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"billmate/internal/models"
	"billmate/internal/storage"
)

// PreferenceService handles per-user notification preferences.
type PreferenceService struct {
	store storage.Store
}

// NewPreferenceService creates a PreferenceService.
func NewPreferenceService(store storage.Store) *PreferenceService {
	return &PreferenceService{store: store}
}

// Get returns the user's reminder configuration, falling back to the
// defaults when they never saved one.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	pref, err := s.store.GetNotificationPreference(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultNotificationPreference(userID), nil
	}
	return pref, err
}

// Update stores the user's reminder configuration (upsert semantics, one
// record per user).
func (s *PreferenceService) Update(ctx context.Context, userID string, daysBeforeDue []int, notifyOnPaid, notifyOnOverdue bool) (*models.NotificationPreference, error) {
	for _, d := range daysBeforeDue {
		if d < 0 {
			return nil, fmt.Errorf("%w: reminder offsets cannot be negative", ErrValidation)
		}
	}
	if len(daysBeforeDue) == 0 {
		daysBeforeDue = []int{1}
	}

	pref := &models.NotificationPreference{
		UserID:          userID,
		DaysBeforeDue:   daysBeforeDue,
		NotifyOnPaid:    notifyOnPaid,
		NotifyOnOverdue: notifyOnOverdue,
	}
	if err := s.store.UpsertNotificationPreference(ctx, pref); err != nil {
		slog.Error("Update preferences failed", "user_id", userID, "error", err)
		return nil, err
	}
	slog.Info("Preferences updated", "user_id", userID)
	return pref, nil
}
