package models

// NotificationPreference is a user's reminder configuration. One record per
// user with upsert semantics; preferences are stored, actual notification
// delivery is the mobile client's concern.
type NotificationPreference struct {
	// UserID identifies the owner (primary key).
	UserID string `json:"userId"`

	// DaysBeforeDue lists the "days before due date" reminder offsets.
	DaysBeforeDue []int `json:"daysBeforeDue"`

	// NotifyOnPaid enables a notice when the partner marks a bill paid.
	NotifyOnPaid bool `json:"notifyOnPaid"`

	// NotifyOnOverdue enables a notice when a bill goes overdue.
	NotifyOnOverdue bool `json:"notifyOnOverdue"`

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64 `json:"updatedAt"`
}

// DefaultNotificationPreference returns the configuration used until a user
// saves their own: one day's notice, both event notices on.
func DefaultNotificationPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:          userID,
		DaysBeforeDue:   []int{1},
		NotifyOnPaid:    true,
		NotifyOnOverdue: true,
	}
}
