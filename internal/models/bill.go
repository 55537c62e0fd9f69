package models

import "github.com/shopspring/decimal"

// Frequency is how often a bill recurs.
type Frequency string

const (
	FrequencyOneTime Frequency = "one-time"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Bill represents a single payable obligation.
//
// A bill carries two independent paid-flags, one per side of a shared
// connection. PaidByUser1 is owned by the bill's creator, PaidByUser2 by the
// connection counterpart. The bill only counts as fully paid when both are
// true; for personal (unshared) bills only the creator's flag matters.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Name is the human-readable name (e.g. "Rent", "Electricity").
	Name string `json:"name"`

	// Amount is the bill amount. Never negative.
	Amount decimal.Decimal `json:"amount"`

	// DueDate is the calendar date the bill is due, formatted "2006-01-02".
	// Only the date matters; comparisons truncate time of day.
	DueDate string `json:"dueDate"`

	// Frequency is how often the bill recurs.
	Frequency Frequency `json:"frequency"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`

	// CreatedBy is the user ID of the bill's creator.
	CreatedBy string `json:"createdBy"`

	// SharedConnectionID links the bill to a pairing, empty for personal
	// bills. A linked bill is visible to both sides of the connection once
	// the connection is active.
	SharedConnectionID string `json:"sharedConnectionId,omitempty"`

	// PaidByUser1 is the creator-side paid flag.
	PaidByUser1 bool `json:"paidByUser1"`

	// PaidByUser2 is the counterpart-side paid flag.
	PaidByUser2 bool `json:"paidByUser2"`

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64 `json:"updatedAt"`
}

// BillSplit records how a shared bill's amount divides between the two sides
// of a connection. Percentages are whole numbers that sum to 100.
type BillSplit struct {
	BillID             string          `json:"billId"`
	SharedConnectionID string          `json:"sharedConnectionId"`
	User1Percentage    decimal.Decimal `json:"user1Percentage"`
	User2Percentage    decimal.Decimal `json:"user2Percentage"`
	UpdatedAt          int64           `json:"updatedAt"`
}
