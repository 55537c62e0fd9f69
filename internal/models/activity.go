package models

// ActivityType classifies a bill audit entry.
type ActivityType string

const (
	ActivityCreated   ActivityType = "created"
	ActivityPaid      ActivityType = "paid"
	ActivityUnpaid    ActivityType = "unpaid"
	ActivityEdited    ActivityType = "edited"
	ActivityCommented ActivityType = "commented"
	ActivityDeleted   ActivityType = "deleted"
)

// BillActivity is an immutable audit record of a state-changing action taken
// on a bill. Entries are append-only and outlive bill deletion.
type BillActivity struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// BillID references the bill the entry is about. Not a foreign key with
	// cascade: the audit trail survives bill deletion.
	BillID string `json:"billId"`

	// UserID is the actor's user ID.
	UserID string `json:"userId"`

	// UserName is the actor's display name at the time of the action.
	UserName string `json:"userName,omitempty"`

	// Type classifies the action.
	Type ActivityType `json:"type"`

	// Description is free text, e.g. `Marked "Rent" as paid`.
	Description string `json:"description"`

	// CreatedAt is the Unix timestamp of the action.
	CreatedAt int64 `json:"createdAt"`
}
