package models

// ConnectionStatus is the overall state of a shared connection.
type ConnectionStatus string

const (
	// ConnectionPending means the row exists but at most one side accepted.
	ConnectionPending ConnectionStatus = "pending"

	// ConnectionActive means both sides accepted. Only an active connection
	// grants shared bill visibility.
	ConnectionActive ConnectionStatus = "active"
)

// ConnectionCode is a short-lived invitation token one user generates for
// another to redeem to initiate pairing.
//
// A code is single-use: once consumed it is permanently invalid. It is also
// invalid after its expiry regardless of use state; expiry is a validity
// check at read time, not an explicit transition.
type ConnectionCode struct {
	// Code is the fixed-length alphanumeric token itself (primary key).
	Code string `json:"code"`

	// CreatedBy is the user ID of the inviter.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the code was issued.
	CreatedAt int64 `json:"createdAt"`

	// ExpiresAt is the Unix timestamp after which the code is invalid,
	// 24 hours after creation.
	ExpiresAt int64 `json:"expiresAt"`

	// UsedBy is the user ID that consumed the code, empty while unused.
	UsedBy string `json:"usedBy,omitempty"`

	// UsedAt is the Unix timestamp of consumption, zero while unused.
	UsedAt int64 `json:"usedAt,omitempty"`
}

// Used reports whether the code has been consumed.
func (c *ConnectionCode) Used() bool {
	return c.UsedBy != ""
}

// SharedConnection is a pairing between exactly two users. User1 is always
// the inviter (code creator), User2 the redeemer. Each user may belong to at
// most one connection at a time.
type SharedConnection struct {
	// ID is the unique identifier for the connection (UUID format).
	ID string `json:"id"`

	// User1ID is the inviter's user ID.
	User1ID string `json:"user1Id"`

	// User2ID is the redeemer's user ID.
	User2ID string `json:"user2Id"`

	// User1Accepted is the inviter-side acceptance flag. Set immediately at
	// creation (the inviter auto-accepts by issuing the code).
	User1Accepted bool `json:"user1Accepted"`

	// User2Accepted is the redeemer-side acceptance flag.
	User2Accepted bool `json:"user2Accepted"`

	// Status is pending until both acceptance flags are true, then active.
	Status ConnectionStatus `json:"status"`

	// CreatedAt is the Unix timestamp when the connection was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last acceptance change.
	UpdatedAt int64 `json:"updatedAt"`
}

// Involves reports whether userID is either side of the connection.
func (c *SharedConnection) Involves(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherUser returns the counterpart's user ID, or empty if userID is not a
// participant.
func (c *SharedConnection) OtherUser(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}
