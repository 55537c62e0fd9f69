package pairing

import (
	"time"

	"github.com/google/uuid"

	"billmate/internal/models"
)

// NewConnection builds a pending connection between inviter and redeemer.
// The inviter's side is accepted immediately: issuing a code is consent.
func NewConnection(inviterID, redeemerID string, now time.Time) *models.SharedConnection {
	return &models.SharedConnection{
		ID:            uuid.New().String(),
		User1ID:       inviterID,
		User2ID:       redeemerID,
		User1Accepted: true,
		User2Accepted: false,
		Status:        models.ConnectionPending,
		CreatedAt:     now.Unix(),
		UpdatedAt:     now.Unix(),
	}
}

// ComputeStatus derives the overall status from the two acceptance flags.
func ComputeStatus(user1Accepted, user2Accepted bool) models.ConnectionStatus {
	if user1Accepted && user2Accepted {
		return models.ConnectionActive
	}
	return models.ConnectionPending
}

// SharedVisible reports whether bills linked to the connection surface as
// shared. A pending connection grants no shared visibility.
func SharedVisible(conn *models.SharedConnection) bool {
	return conn != nil && conn.User1Accepted && conn.User2Accepted
}
